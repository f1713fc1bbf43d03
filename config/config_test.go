package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return Load(v)
}

func TestLoad(t *testing.T) {
	c, err := load(t, `
installDir: /opt/gitlab-sync
journal: journal.db
api:
  user: acme
  token: secret
deployBranch: main
repositories:
  - name: Demo
    path: /srv/demo
  - name: docs
    path: /srv/docs/
    branch: gh-pages
`)
	require.NoError(t, err)

	assert.Equal(t, ProviderGitLab, c.API.Provider)
	assert.Equal(t, "https://gitlab.com/", c.API.Host)
	assert.Equal(t, "acme", c.API.Namespace)
	assert.True(t, c.API.InsecureSkipVerify)
	assert.True(t, c.BestEffortCopy)
	assert.Equal(t, filepath.Join("/opt/gitlab-sync", "commits"), c.StagingDir)
	assert.Equal(t, filepath.Join("/opt/gitlab-sync", "journal.db"), c.Journal)
	assert.Equal(t, ":3016", c.Listen)
	assert.Equal(t, "/webhooks", c.HookPath)

	r, ok := c.Repository("Demo")
	require.True(t, ok, "repository names keep their case")
	assert.Equal(t, "/srv/demo/", r.Path)
	assert.Equal(t, "main", c.Branch("Demo"))
	assert.Equal(t, "gh-pages", c.Branch("docs"))
	assert.Equal(t, "/srv/docs/", c.Repositories[1].Path)

	_, ok = c.Repository("demo")
	assert.False(t, ok)
}

func TestLoadGitHubHost(t *testing.T) {
	c, err := load(t, "installDir: /opt\napi:\n  provider: github\n")
	require.NoError(t, err)
	assert.Equal(t, DefaultGitHubAPI, c.API.Host)

	c, err = load(t, "installDir: /opt\napi:\n  provider: github\n  host: https://ghe.example.com/\n")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/", c.API.Host)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown provider",
			"installDir: /opt\napi:\n  provider: svn\n",
			"unknown api provider",
		},
		{
			"repository without path",
			"installDir: /opt\nrepositories:\n  - name: demo\n",
			"has no path",
		},
		{
			"duplicate repository",
			"installDir: /opt\nrepositories:\n  - {name: demo, path: /a}\n  - {name: demo, path: /b}\n",
			"listed twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWithSeparator(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		in   string
		want string
	}{
		{"/srv/demo", "/srv/demo" + sep},
		{"/srv/demo" + sep, "/srv/demo" + sep},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WithSeparator(tt.in))
	}
}
