package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localServePrefix is the URL prefix the HTTP server mounts the upload
// directory under.
const localServePrefix = "/uploads/audio/"

// LocalStore keeps blobs on the local filesystem under a base directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a LocalStore rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Put writes the blob to dir/name and returns its serve URL.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	name = filepath.Base(name) // never let a client-supplied name escape the directory
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file %s: %w", path, err)
	}

	return localServePrefix + name, nil
}

// Remove deletes the file behind a URL returned by Put.
func (s *LocalStore) Remove(ctx context.Context, url string) error {
	name := strings.TrimPrefix(url, localServePrefix)
	if name == url || name == "" {
		return fmt.Errorf("not a local blob URL: %s", url)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return nil
}
