package deployer

import (
	"context"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redbadger/gitlab-sync/archive"
	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/constants"
	"github.com/redbadger/gitlab-sync/filesystem"
	gh "github.com/redbadger/gitlab-sync/github"
	"github.com/redbadger/gitlab-sync/gitlab"
)

// NewFromConfig builds a Deployer working on the local filesystem against
// the configured hosting service. rec may be nil.
func NewFromConfig(ctx context.Context, cfg *config.Config, rec Recorder) (*Deployer, error) {
	userAgent := cfg.API.UserAgent
	if userAgent == "" {
		userAgent = constants.UserAgent
	}
	client := gitlab.NewHTTPClient(cfg.API.InsecureSkipVerify)
	fetcher := &archive.Fetcher{
		Client:    client,
		UserAgent: userAgent,
	}

	var source ArchiveSource
	switch cfg.API.Provider {
	case config.ProviderGitHub:
		apiURL := cfg.API.Host
		if apiURL == config.DefaultGitHubAPI {
			apiURL = ""
		}
		c, err := gh.NewClient(ctx, client, apiURL, cfg.API.Token)
		if err != nil {
			return nil, err
		}
		c.UserAgent = userAgent
		source = gh.Archives{Client: c}
	case config.ProviderGitLab:
		source = gitlab.Archives{Host: cfg.API.Host}
		fetcher.TokenParam = archive.DefaultTokenParam
		fetcher.Tokens = gitlab.NewTokenSource(ctx, client, gitlab.Credentials{
			Host:      cfg.API.Host,
			User:      cfg.API.User,
			Password:  cfg.API.Password,
			Token:     cfg.API.Token,
			UserAgent: userAgent,
		})
	default:
		return nil, errors.Errorf("unknown api provider %q", cfg.API.Provider)
	}

	fs := osfs.New("/")
	log.WithFields(log.Fields{
		"provider":     cfg.API.Provider,
		"host":         cfg.API.Host,
		"repositories": len(cfg.Repositories),
		"stagingDir":   cfg.StagingDir,
	}).Debug("deployer configured")

	return &Deployer{
		Config:    cfg,
		Source:    source,
		Fetcher:   fetcher,
		Extractor: &archive.Extractor{},
		Copier:    &filesystem.Copier{Src: fs, Dest: fs, BestEffort: cfg.BestEffortCopy},
		Remover:   filesystem.NewRemover(fs, cfg.InstallDir),
		Fs:        fs,
		Recorder:  rec,
	}, nil
}
