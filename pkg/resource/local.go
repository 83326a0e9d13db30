package resource

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalFileManager stores files under a base directory.
type LocalFileManager struct {
	baseDir string
}

// NewLocalFileManager creates a file manager writing under baseDir. The directory is created when needed.
func NewLocalFileManager(baseDir string) (*LocalFileManager, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve %s", baseDir)
	}

	return &LocalFileManager{baseDir: abs}, nil
}

// WriteFile copies src to baseDir/key.
func (m *LocalFileManager) WriteFile(ctx context.Context, key, src string) (FileHandle, error) {
	err := ctx.Err()
	if err != nil {
		return FileHandle{}, err //nolint:wrapcheck
	}

	dst := filepath.Join(m.baseDir, filepath.FromSlash(key))

	err = os.MkdirAll(filepath.Dir(dst), 0o755)
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to create directory for %s", dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to create %s", dst)
	}
	defer out.Close()

	size, err := io.Copy(out, in)
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to copy %s to %s", src, dst)
	}

	err = out.Close()
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to close %s", dst)
	}

	return FileHandle{URI: (&url.URL{Scheme: "file", Path: filepath.ToSlash(dst)}).String(), Size: size}, nil
}

var _ FileManager = (*LocalFileManager)(nil)
