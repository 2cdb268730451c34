package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// FS stores objects under a local directory. The returned URL is a file:// URL.
type FS struct {
	root string
}

var _ Store = (*FS)(nil)

func NewFS(root string) (*FS, error) {
	if root == "" {
		return nil, goerr.New("blob root directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve blob root", goerr.V("root", root))
	}
	return &FS{root: abs}, nil
}

func (f *FS) Put(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	dst := filepath.Join(f.root, filepath.FromSlash(path))
	if !strings.HasPrefix(dst, f.root+string(filepath.Separator)) {
		return "", goerr.New("object path escapes blob root", goerr.V("path", path))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", goerr.Wrap(err, "failed to create object directory", goerr.V("path", path))
	}

	file, err := os.Create(dst)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create object", goerr.V("path", path))
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("path", path))
	}
	if err := file.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close object", goerr.V("path", path))
	}

	return "file://" + filepath.ToSlash(dst), nil
}
