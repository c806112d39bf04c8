package storage

import (
	"context"
	"errors"
	"io"
)

// Provider is the blob storage backend behind the asset library. Keys are
// flat generated names; no business validation happens here.
type Provider interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) bool
	Save(ctx context.Context, key string, body io.Reader) error
	Delete(ctx context.Context, key string) error
}

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidPath   = errors.New("path escapes storage root")
)
