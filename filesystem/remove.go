package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Remover deletes trees, refusing to touch its protected directories.
type Remover struct {
	Fs billy.Filesystem
	// Protected holds directories whose content is never removed, typically
	// the installation directory of this tool.
	Protected []string
	// Resolve returns the canonical form of a path. It defaults to Canonical.
	Resolve func(string) (string, error)
}

// NewRemover returns a Remover protecting the given directories.
func NewRemover(fs billy.Filesystem, protected ...string) *Remover {
	return &Remover{Fs: fs, Protected: protected, Resolve: Canonical}
}

// Canonical returns the absolute path of p with symbolic links evaluated.
// Paths that do not exist are only made absolute.
func Canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Protects reports whether path resolves to a protected directory.
func (r *Remover) Protects(path string) bool {
	resolve := r.Resolve
	if resolve == nil {
		resolve = Canonical
	}
	p, err := resolve(path)
	if err != nil {
		return false
	}
	for _, dir := range r.Protected {
		d, err := resolve(dir)
		if err == nil && d == p {
			return true
		}
	}
	return false
}

// Remove recursively removes the content of path, and path itself when
// deleteRoot is set. Protected directories are left untouched wherever they
// sit in the tree; a protected path yields nil, and a root kept alive by a
// protected descendant makes deleteRoot fail. A missing path yields an error
// wrapping os.ErrNotExist.
func (r *Remover) Remove(path string, deleteRoot bool) error {
	info, err := r.Fs.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, "nothing to remove at %s", path)
	}
	if r.Protects(path) {
		log.WithField("path", path).Info("protected directory will not be cleaned up")
		return nil
	}
	if !info.IsDir() {
		return r.Fs.Remove(path)
	}

	kept, errs := r.clear(path)
	if deleteRoot && errs == nil {
		if kept {
			return fmt.Errorf("error removing %s: it holds a protected directory", path)
		}
		if err := r.Fs.Remove(path); err != nil {
			return fmt.Errorf("error removing %s: %v", path, err)
		}
	}
	return errs
}

// clear removes everything below dir except protected directories. kept
// reports whether one was found, in which case dir cannot be removed.
func (r *Remover) clear(dir string) (kept bool, errs error) {
	infos, err := r.Fs.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, info := range infos {
		name := filepath.Join(dir, info.Name())
		if info.IsDir() {
			if r.Protects(name) {
				log.WithField("path", name).Info("protected directory will not be cleaned up")
				kept = true
				continue
			}
			k, err := r.clear(name)
			errs = multierr.Append(errs, err)
			if k {
				kept = true
				continue
			}
		}
		if err := r.Fs.Remove(name); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, fmt.Errorf("error removing %s: %v", name, err))
		}
	}
	return kept, errs
}
