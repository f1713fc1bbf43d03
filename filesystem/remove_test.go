package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clean(p string) (string, error) { return filepath.Clean(p), nil }

func TestRemove(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		deleteRoot bool
		wantRoot   bool
	}{
		{"contents only", "/dest", false, true},
		{"contents and root", "/dest", true, false},
		{"trailing separator", "/dest/", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			writeTree(t, fs, map[string]string{
				"dest/a.txt":         "a",
				"dest/sub/b.txt":     "b",
				"dest/sub/deep/c.md": "c",
				"other/d.txt":        "d",
			})
			r := &Remover{Fs: fs, Resolve: clean}
			require.NoError(t, r.Remove(tt.path, tt.deleteRoot))

			_, err := fs.Stat("/dest")
			assert.Equal(t, tt.wantRoot, err == nil)
			if tt.wantRoot {
				infos, err := fs.ReadDir("/dest")
				require.NoError(t, err)
				assert.Empty(t, infos)
			}
			_, err = fs.Stat("/other/d.txt")
			assert.NoError(t, err)
		})
	}
}

func TestRemoveFile(t *testing.T) {
	fs := memfs.New()
	writeTree(t, fs, map[string]string{"dest/a.txt": "a"})
	require.NoError(t, (&Remover{Fs: fs, Resolve: clean}).Remove("/dest/a.txt", false))
	_, err := fs.Stat("/dest/a.txt")
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveMissing(t *testing.T) {
	err := (&Remover{Fs: memfs.New(), Resolve: clean}).Remove("/nowhere", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestRemoveProtected(t *testing.T) {
	install := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(install, "commits"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(install, "gitlab-sync"), []byte("binary"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(install, "commits", "full-1"), []byte("zip"), 0o644))

	link := filepath.Join(t.TempDir(), "install-link")
	require.NoError(t, os.Symlink(install, link))

	fs := osfs.New("/")
	before, err := Digest(fs, install)
	require.NoError(t, err)

	r := NewRemover(fs, install)
	for _, p := range []string{install, install + string(filepath.Separator), link + string(filepath.Separator)} {
		assert.True(t, r.Protects(p), p)
		require.NoError(t, r.Remove(p, true), p)
	}
	assert.False(t, r.Protects(filepath.Join(install, "commits")))

	after, err := Digest(fs, install)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveKeepsNestedProtected(t *testing.T) {
	site := t.TempDir()
	install := filepath.Join(site, "tools", "gitlab-sync")
	require.NoError(t, os.MkdirAll(filepath.Join(install, "commits"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(install, "gitlab-sync"), []byte("binary"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "tools", "old.sh"), []byte("old"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(site, "assets", "css"), 0o755))

	fs := osfs.New("/")
	r := NewRemover(fs, install)

	tests := []struct {
		name       string
		deleteRoot bool
		wantErr    bool
	}{
		{"contents only", false, false},
		{"root kept alive", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Remove(site+string(filepath.Separator), tt.deleteRoot)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Remove() error = %v, wantErr %v", err, tt.wantErr)
			}

			assert.FileExists(t, filepath.Join(install, "gitlab-sync"))
			assert.DirExists(t, filepath.Join(install, "commits"))
			assert.NoFileExists(t, filepath.Join(site, "index.html"))
			assert.NoFileExists(t, filepath.Join(site, "tools", "old.sh"))
			assert.NoDirExists(t, filepath.Join(site, "assets"))
		})
	}
}
