package storage

import "context"

// BlobStore is the namespace-scoped object store holding profile pictures.
// Object names are relative to the configured bucket.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	GetPublicURL(ctx context.Context, name string) (string, error)
	Remove(ctx context.Context, names []string) error
}
