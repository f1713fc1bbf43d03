package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/redbadger/gitlab-sync/fsWalker"
)

// Summary describes the content of a tree.
type Summary struct {
	Files int
	Dirs  int
	// Sum is a sha256 over every relative path and file content
	Sum string
}

// Digest walks root and summarizes it. root itself is not counted.
func Digest(fs billy.Filesystem, root string) (Summary, error) {
	var s Summary
	h := sha256.New()
	err := fsWalker.Walk(fs, root, func(fs billy.Filesystem, path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		switch {
		case info.IsDir():
			s.Dirs++
			io.WriteString(h, "d "+rel+"\n")
		case info.Mode()&os.ModeSymlink != 0:
			s.Files++
			target, err := fs.Readlink(path)
			if err != nil {
				return err
			}
			io.WriteString(h, "l "+rel+" "+target+"\n")
		default:
			s.Files++
			io.WriteString(h, "f "+rel+"\n")
			f, err := fs.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := io.Copy(h, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	s.Sum = hex.EncodeToString(h.Sum(nil))
	return s, nil
}
