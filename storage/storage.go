package storage

import (
	"context"
	"io"
)

// BlobStore persists uploaded audio blobs and hands back the URL the
// track record will reference. Implementations: local disk and MinIO.
type BlobStore interface {
	// Put stores the blob under the given object name and returns the
	// serve URL to persist on the track record.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)

	// Remove deletes the blob a previous Put returned this URL for.
	Remove(ctx context.Context, url string) error
}
