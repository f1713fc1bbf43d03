package archive

import (
	"archive/zip"
	"os"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
)

// ErrCorruptArchive is returned when the downloaded file is not a usable zip
// archive, usually because the repository name was wrong and the server sent
// an error page instead.
var ErrCorruptArchive = errors.New("unable to extract files")

// Extractor unpacks zip archives.
type Extractor struct {
	Umask os.FileMode
}

// Extract unpacks archivePath below destDir and returns the name of the
// top-level folder, taken from the archive's first entry. Nothing is written
// when the archive cannot be opened.
func (e *Extractor) Extract(archivePath, destDir string) (string, error) {
	folder, err := topLevelFolder(archivePath)
	if err != nil {
		return "", err
	}
	zd := &getter.ZipDecompressor{}
	if err := zd.Decompress(destDir, archivePath, true, e.Umask); err != nil {
		return "", errors.Wrapf(ErrCorruptArchive, "%v", err)
	}
	return folder, nil
}

func topLevelFolder(archivePath string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", errors.Wrapf(ErrCorruptArchive, "%v", err)
	}
	defer r.Close()

	if len(r.File) == 0 {
		return "", errors.Wrap(ErrCorruptArchive, "empty archive")
	}
	name := strings.TrimLeft(r.File[0].Name, "/")
	return strings.SplitN(name, "/", 2)[0], nil
}
