package fsWalker

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
)

// SkipDir can be returned by a WalkFunc to skip the directory it was called with.
var SkipDir = filepath.SkipDir

// WalkFunc is called for every file and directory visited by Walk.
type WalkFunc func(fs billy.Filesystem, path string, info os.FileInfo, err error) error

// Walk walks the file tree rooted at root in lexical order, calling fn for
// each file or directory, including root. Symbolic links are not followed.
func Walk(fs billy.Filesystem, root string, fn WalkFunc) error {
	info, err := fs.Lstat(root)
	if err != nil {
		err = fn(fs, root, nil, err)
	} else {
		err = walk(fs, root, info, fn)
	}
	if err == SkipDir {
		return nil
	}
	return err
}

func walk(fs billy.Filesystem, path string, info os.FileInfo, fn WalkFunc) error {
	if !info.IsDir() {
		return fn(fs, path, info, nil)
	}

	infos, err := fs.ReadDir(path)
	err1 := fn(fs, path, info, err)
	if err != nil || err1 != nil {
		// the directory could not be read or the caller skipped it
		return err1
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	for _, child := range infos {
		name := fs.Join(path, child.Name())
		err = walk(fs, name, child, fn)
		if err != nil {
			if !child.IsDir() || err != SkipDir {
				return err
			}
		}
	}
	return nil
}
