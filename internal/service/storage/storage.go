package storage

import (
	"context"
	"io"
)

// Store is the physical home of uploaded PDFs and their previews. Paths are
// relative keys such as "exams/12/9f0c....pdf". Remove treats an already
// missing object as success.
type Store interface {
	Save(ctx context.Context, path string, r io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) bool
	// List returns all keys under prefix. Used by the orphan sweep.
	List(ctx context.Context, prefix string) ([]string, error)
}
