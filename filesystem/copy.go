package filesystem

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const dirMode = 0o755

// Copier copies trees from Src into Dest.
type Copier struct {
	Src  billy.Filesystem
	Dest billy.Filesystem
	// BestEffort keeps copying after a failure and reports every failure at
	// the end. Otherwise the copy stops at the first failure. Files already
	// copied are never rolled back.
	BestEffort bool
}

// Copy copies src to dest, creating dest and its ancestors when missing, and
// returns the number of files written. When src is a single file it is copied
// as such.
func (c *Copier) Copy(src, dest string) (int, error) {
	info, err := c.Src.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if di, err := c.Dest.Stat(dest); err == nil && di.IsDir() {
			dest = filepath.Join(dest, filepath.Base(src))
		} else if err := c.Dest.MkdirAll(filepath.Dir(dest), dirMode); err != nil {
			return 0, err
		}
	}
	var n int
	err = c.copy(src, dest, info, &n)
	return n, err
}

func (c *Copier) copy(src, dest string, info os.FileInfo, n *int) error {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return c.lcopy(src, dest, n)
	case info.IsDir():
		return c.dcopy(src, dest, n)
	default:
		return c.fcopy(src, dest, info, n)
	}
}

func (c *Copier) fcopy(src, dest string, info os.FileInfo, n *int) error {
	f, err := c.Dest.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := c.Src.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err = io.Copy(f, s); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	*n++
	return nil
}

func (c *Copier) lcopy(src, dest string, n *int) error {
	target, err := c.Src.Readlink(src)
	if err != nil {
		return err
	}
	if _, err := c.Dest.Lstat(dest); err == nil {
		if err := c.Dest.Remove(dest); err != nil {
			return err
		}
	}
	if err := c.Dest.Symlink(target, dest); err != nil {
		return err
	}
	*n++
	return nil
}

func (c *Copier) dcopy(src, dest string, n *int) error {
	if err := c.Dest.MkdirAll(dest, dirMode); err != nil {
		return err
	}

	infos, err := c.Src.ReadDir(src)
	if err != nil {
		return err
	}

	var errs error
	for _, info := range infos {
		err := c.copy(
			filepath.Join(src, info.Name()),
			filepath.Join(dest, info.Name()),
			info,
			n,
		)
		if err == nil {
			continue
		}
		if !c.BestEffort {
			return err
		}
		log.WithError(err).WithField("path", filepath.Join(src, info.Name())).Warn("copy failed, continuing")
		errs = multierr.Append(errs, err)
	}

	return errs
}
