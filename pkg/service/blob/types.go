package blob

import (
	"context"
	"io"
)

// Store writes recorded audio objects
type Store interface {
	// Put writes r at path and returns a URL referencing the stored object
	Put(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}
