package deployer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redbadger/gitlab-sync/archive"
	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/filesystem"
	"github.com/redbadger/gitlab-sync/gitlab"
	"github.com/redbadger/gitlab-sync/journal"
	"github.com/redbadger/gitlab-sync/model"
)

// ArchiveSource locates the archive of a repository at a ref.
type ArchiveSource interface {
	ArchiveURL(ctx context.Context, namespace, repo, ref string) (string, error)
}

// ArchiveFetcher downloads an archive to a local file.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// ArchiveExtractor unpacks an archive and names its top-level folder.
type ArchiveExtractor interface {
	Extract(archivePath, destDir string) (string, error)
}

// TreeCopier copies a tree into place.
type TreeCopier interface {
	Copy(src, dest string) (int, error)
}

// TreeRemover deletes trees.
type TreeRemover interface {
	Remove(path string, deleteRoot bool) error
	Protects(path string) bool
}

// Recorder keeps the outcome of every run.
type Recorder interface {
	Record(journal.Entry) error
}

// Deployer runs synchronizations.
type Deployer struct {
	Config    *config.Config
	Source    ArchiveSource
	Fetcher   ArchiveFetcher
	Extractor ArchiveExtractor
	Copier    TreeCopier
	Remover   TreeRemover
	// Fs is the filesystem holding the staging directory and destinations
	Fs       billy.Filesystem
	Recorder Recorder

	// Now and Suffix name temporary files; they default to time.Now and a
	// random hex string
	Now    func() time.Time
	Suffix func() string
}

// Result describes a finished or aborted sync.
type Result struct {
	Repository string
	Namespace  string
	Branch     string
	Bytes      int64
	Files      int
	// Partial is set when a failed copy left some new files in the destination
	Partial  bool
	Warnings []string
	Summary  filesystem.Summary
}

// Run executes trigger and writes the transcript to out. The returned error
// is an *Error; the result is never nil.
func (d *Deployer) Run(ctx context.Context, trigger model.Trigger, out io.Writer) (*Result, error) {
	started := d.now()
	t := &transcript{
		w:       out,
		verbose: d.Config.Verbose,
		log:     log.WithField("trigger", trigger.Kind()),
	}

	var (
		res *Result
		err *Error
	)
	switch trig := trigger.(type) {
	case model.FullSync:
		res, err = d.syncFull(ctx, trig.DeploymentRequest, t)
	case model.WebhookSync:
		res, err = d.syncWebhook(ctx, trig, t)
	case model.Retry:
		res = &Result{}
		err = t.Fail(&Error{Kind: NotSupported, Msg: "Retrying failed synchronizations is not supported yet."})
	default:
		res = &Result{}
		err = t.Fail(&Error{Kind: BadRequest, Msg: fmt.Sprintf("Unknown trigger %T.", trigger)})
	}

	d.record(trigger, res, err, started)
	if err != nil {
		return res, err
	}
	return res, nil
}

func (d *Deployer) syncWebhook(ctx context.Context, trig model.WebhookSync, t *transcript) (*Result, *Error) {
	t.Printf("GitLab Sync\n==============")
	team, repo, err := gitlab.ParseHomepage(trig.Homepage)
	if err != nil {
		return &Result{}, t.Fail(&Error{Kind: BadRequest, Msg: fmt.Sprintf("Invalid repository homepage %q.", trig.Homepage), Err: err})
	}
	res, ferr := d.syncFull(ctx, model.DeploymentRequest{
		Repository: repo,
		Team:       team,
		AuthKey:    trig.AuthKey,
	}, t)
	if ferr == nil {
		t.Printf("\nFinished processing commits.")
	}
	return res, ferr
}

func (d *Deployer) syncFull(ctx context.Context, req model.DeploymentRequest, t *transcript) (*Result, *Error) {
	cfg := d.Config
	res := &Result{Repository: req.Repository}
	t.log = t.log.WithField("repository", req.Repository)

	if err := authorize(cfg, req); err != nil {
		return res, t.Fail(err)
	}

	t.Printf("GitLab Sync - Full Deploy\n============================")

	repo, ok := cfg.Repository(req.Repository)
	if !ok {
		return res, t.Fail(&Error{Kind: UnknownRepository, Repository: req.Repository, Msg: fmt.Sprintf("Unknown repository: %s!", req.Repository)})
	}
	dest := config.WithSeparator(repo.Path)
	res.Branch = cfg.Branch(repo.Name)
	res.Namespace = req.Team
	if res.Namespace == "" {
		res.Namespace = cfg.API.Namespace
	}

	fail := func(kind Kind, err error, format string, args ...interface{}) *Error {
		return t.Fail(&Error{Kind: kind, Repository: repo.Name, Msg: fmt.Sprintf(format, args...), Err: err})
	}

	archiveURL, err := d.Source.ArchiveURL(ctx, res.Namespace, repo.Name, res.Branch)
	if err != nil {
		return res, fail(TransferError, err, "Unable to locate the archive of %s.", repo.Name)
	}

	if err := d.Fs.MkdirAll(cfg.StagingDir, 0o755); err != nil {
		return res, fail(TransferError, err, "Unable to create the staging directory %s.", cfg.StagingDir)
	}
	archivePath := filepath.Join(cfg.StagingDir, d.tempName())
	workDir := archivePath + ".d"

	t.Infof("Fetching archive from %s", archiveURL)
	res.Bytes, err = d.Fetcher.Fetch(ctx, archiveURL, archivePath)
	if err != nil {
		d.cleanup(t, res, archivePath, workDir)
		if errors.Is(err, archive.ErrToken) {
			return res, fail(AuthTokenError, err, "Cannot get token.")
		}
		return res, fail(TransferError, err, "File transfer error.")
	}
	t.Infof("Downloaded to %s (%d byte(s))", archivePath, res.Bytes)

	t.Infof("Extracting archive to %s", workDir)
	folder, err := d.Extractor.Extract(archivePath, workDir)
	if err != nil {
		d.cleanup(t, res, archivePath, workDir)
		return res, fail(ExtractionFailed, err, "Unable to extract files. Is the repository name correct?")
	}

	extracted := filepath.Join(workDir, folder)
	if info, err := d.Fs.Stat(extracted); folder == "" || err != nil || !info.IsDir() {
		d.cleanup(t, res, archivePath, workDir)
		return res, fail(MalformedArchive, err, "Unable to find the extracted files in %s", workDir)
	}

	if req.Clean {
		t.Infof("Deleting old content from %s", dest)
		if d.Remover.Protects(dest) {
			t.Infof("Contents of '%s' folder will not be cleaned up.", filepath.Base(filepath.Clean(dest)))
		}
		if err := d.Remover.Remove(dest, false); err != nil {
			d.warn(t, res, err, "Unable to completely remove the old files from %s. Process will continue anyway!", dest)
		}
	}

	t.Infof("Copying new content to %s", dest)
	res.Files, err = d.Copier.Copy(extracted, dest)
	if err != nil {
		res.Partial = res.Files > 0
		d.cleanup(t, res, archivePath, workDir)
		return res, fail(DeployIncomplete, err, "Unable to deploy the extracted files to %s. Deployment is incomplete!", dest)
	}

	t.Infof("Cleaning up temporary files and folders")
	d.cleanup(t, res, archivePath, workDir)

	if s, err := filesystem.Digest(d.Fs, filepath.Clean(dest)); err == nil {
		res.Summary = s
		t.log.WithFields(log.Fields{
			"files":  s.Files,
			"dirs":   s.Dirs,
			"sha256": s.Sum,
		}).Info("destination tree")
	}

	t.Printf("\nFinished deploying %s.", repo.Name)
	return res, nil
}

// cleanup removes the temporary archive and its extraction directory.
// Failures are warnings.
func (d *Deployer) cleanup(t *transcript, res *Result, archivePath, workDir string) {
	if err := d.Remover.Remove(workDir, true); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.warn(t, res, err, "Unable to remove the temporary folder %s.", workDir)
	}
	if err := d.Fs.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		d.warn(t, res, err, "Unable to remove the temporary archive %s.", archivePath)
	}
}

func (d *Deployer) warn(t *transcript, res *Result, err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	res.Warnings = append(res.Warnings, msg)
	t.Warnf(err, "%s", msg)
}

func (d *Deployer) record(trigger model.Trigger, res *Result, err *Error, started time.Time) {
	if d.Recorder == nil {
		return
	}
	e := journal.Entry{
		Repository: res.Repository,
		Trigger:    trigger.Kind(),
		Status:     200,
		Message:    "ok",
		Bytes:      res.Bytes,
		Files:      res.Files,
		Partial:    res.Partial,
		Started:    started,
		Duration:   d.now().Sub(started),
	}
	if err != nil {
		e.Status = err.Kind.StatusCode()
		e.Message = err.Msg
	}
	if rerr := d.Recorder.Record(e); rerr != nil {
		log.WithError(rerr).Warn("cannot record sync in journal")
	}
}

func (d *Deployer) tempName() string {
	suffix := ""
	if d.Suffix != nil {
		suffix = d.Suffix()
	} else {
		suffix = uuid.NewString()[:8]
	}
	return fmt.Sprintf("full-%d-%s", d.now().Unix(), suffix)
}

func (d *Deployer) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
