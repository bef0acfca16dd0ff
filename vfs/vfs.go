package vfs

import (
	"context"
)

// Fetcher supplies raw bytes for a concrete resolved location. The
// transport behind it (directory on disk, http server, bundled archive)
// is a driver detail; the core never touches the filesystem or network
// directly.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}
