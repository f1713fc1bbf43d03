package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultGitHubAPI is used as api.host for the github provider when the host
// was left at its default.
const DefaultGitHubAPI = "https://api.github.com/"

const (
	defaultHost = "https://gitlab.com/"

	// ProviderGitLab serves archives from <host>/<namespace>/<repo>/repository/archive.zip
	ProviderGitLab = "gitlab"
	// ProviderGitHub resolves zipball links through the GitHub API
	ProviderGitHub = "github"
)

// Config is loaded once at startup and handed to every component.
type Config struct {
	API                   API          `mapstructure:"api"`
	DeployBranch          string       `mapstructure:"deployBranch"`
	Repositories          []Repository `mapstructure:"repositories"`
	StagingDir            string       `mapstructure:"stagingDir"`
	InstallDir            string       `mapstructure:"installDir"`
	DeployAuthKey         string       `mapstructure:"deployAuthKey"`
	RequireAuthentication bool         `mapstructure:"requireAuthentication"`
	Verbose               bool         `mapstructure:"verbose"`
	BestEffortCopy        bool         `mapstructure:"bestEffortCopy"`
	Journal               string       `mapstructure:"journal"`
	Listen                string       `mapstructure:"listen"`
	HookPath              string       `mapstructure:"hookPath"`
	WebhookSecret         string       `mapstructure:"webhookSecret"`

	repositories map[string]Repository
}

// API holds the hosting service settings.
type API struct {
	Provider  string `mapstructure:"provider"`
	Host      string `mapstructure:"host"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Token     string `mapstructure:"token"`
	Namespace string `mapstructure:"namespace"`
	// InsecureSkipVerify disables TLS certificate validation towards the
	// hosting service. It defaults to true to match self-signed installs.
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"`
	UserAgent          string `mapstructure:"userAgent"`
}

// Repository maps a repository name to its local destination.
type Repository struct {
	Name   string `mapstructure:"name"`
	Path   string `mapstructure:"path"`
	Branch string `mapstructure:"branch"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.provider", ProviderGitLab)
	v.SetDefault("api.host", defaultHost)
	v.SetDefault("api.insecureSkipVerify", true)
	v.SetDefault("deployBranch", "master")
	v.SetDefault("stagingDir", "commits")
	v.SetDefault("bestEffortCopy", true)
	v.SetDefault("listen", ":3016")
	v.SetDefault("hookPath", "/webhooks")
}

// Load unmarshals v into a Config and normalizes it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "cannot decode configuration")
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Normalize validates the configuration, resolves relative paths against the
// installation directory and makes every destination end with a separator.
func (c *Config) Normalize() error {
	if c.InstallDir == "" {
		dir, err := ExecutableDir()
		if err != nil {
			return errors.Wrap(err, "cannot determine installation directory")
		}
		c.InstallDir = dir
	}
	installDir, err := filepath.Abs(c.InstallDir)
	if err != nil {
		return errors.Wrapf(err, "invalid installation directory %q", c.InstallDir)
	}
	c.InstallDir = installDir

	if c.StagingDir == "" {
		return fmt.Errorf("stagingDir must not be empty")
	}
	if !filepath.IsAbs(c.StagingDir) {
		c.StagingDir = filepath.Join(c.InstallDir, c.StagingDir)
	}
	c.StagingDir = filepath.Clean(c.StagingDir)
	if c.Journal != "" && !filepath.IsAbs(c.Journal) {
		c.Journal = filepath.Join(c.InstallDir, c.Journal)
	}

	switch c.API.Provider {
	case "":
		c.API.Provider = ProviderGitLab
	case ProviderGitLab:
	case ProviderGitHub:
		if c.API.Host == "" || c.API.Host == defaultHost {
			c.API.Host = DefaultGitHubAPI
		}
	default:
		return fmt.Errorf("unknown api provider %q", c.API.Provider)
	}
	if c.API.Namespace == "" {
		c.API.Namespace = c.API.User
	}
	if c.DeployBranch == "" {
		c.DeployBranch = "master"
	}
	if c.HookPath != "" && !strings.HasPrefix(c.HookPath, "/") {
		c.HookPath = "/" + c.HookPath
	}

	c.repositories = make(map[string]Repository, len(c.Repositories))
	for i, r := range c.Repositories {
		if r.Name == "" {
			return fmt.Errorf("repository #%d has no name", i+1)
		}
		if r.Path == "" {
			return fmt.Errorf("repository %s has no path", r.Name)
		}
		if _, dup := c.repositories[r.Name]; dup {
			return fmt.Errorf("repository %s is listed twice", r.Name)
		}
		p, err := filepath.Abs(r.Path)
		if err != nil {
			return errors.Wrapf(err, "invalid path for repository %s", r.Name)
		}
		r.Path = WithSeparator(p)
		c.Repositories[i] = r
		c.repositories[r.Name] = r
	}
	return nil
}

// Repository looks up the mapping for name.
func (c *Config) Repository(name string) (Repository, bool) {
	r, ok := c.repositories[name]
	return r, ok
}

// Branch returns the branch to deploy for the named repository.
func (c *Config) Branch(name string) string {
	if r, ok := c.repositories[name]; ok && r.Branch != "" {
		return r.Branch
	}
	return c.DeployBranch
}

// WithSeparator appends a path separator unless p already ends with one.
func WithSeparator(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}

// ExecutableDir returns the canonical directory holding the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
