// Package upload makes "store a blob" and "persist a record referencing
// it" behave as one logical transaction even though the blob store and
// the database share nothing. The blob is always written first and the
// record committed second; on a failed commit the fresh blob is removed
// again, so a record never references a blob that does not exist.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"resona/apperr"
	"resona/logger"
	"resona/storage"

	"github.com/google/uuid"
)

// allowedExtensions is the accepted audio set.
var allowedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".ogg":  {},
	".flac": {},
	".m4a":  {},
}

// Upload describes an incoming audio blob.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Coordinator validates uploads and runs the create / replace protocols
// against a BlobStore.
type Coordinator struct {
	store   storage.BlobStore
	maxSize int64
}

// NewCoordinator creates a Coordinator enforcing the given size ceiling.
func NewCoordinator(store storage.BlobStore, maxSize int64) *Coordinator {
	return &Coordinator{store: store, maxSize: maxSize}
}

// Validate checks extension and size before anything is written.
func (c *Coordinator) Validate(up Upload) error {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if ext == "" {
		return apperr.Validation("Invalid file", map[string]string{"file": "No file extension"})
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return apperr.Validation(
			fmt.Sprintf("File type not allowed. Allowed types: %s", allowedList()),
			map[string]string{"file": "Invalid file extension"},
		)
	}
	if up.Size > c.maxSize {
		return apperr.Validation(
			fmt.Sprintf("File too large. Maximum size: %dMB", c.maxSize>>20),
			map[string]string{"file": "Maximum file size exceeded"},
		)
	}
	return nil
}

// Create runs the create protocol: validate, store the blob under a
// collision-resistant name, then call persist with the blob URL. If
// persist fails the blob is deleted again and the persistence error is
// surfaced; a failed compensating delete is logged, never returned.
func (c *Coordinator) Create(ctx context.Context, up Upload, persist func(url string) error) (string, error) {
	if err := c.Validate(up); err != nil {
		return "", err
	}

	url, err := c.stage(ctx, up)
	if err != nil {
		return "", err
	}

	if err := persist(url); err != nil {
		c.discard(ctx, url)
		return "", err
	}

	return url, nil
}

// Replace runs the replace protocol: the new blob is stored while the
// old one stays referenced and untouched, commit repoints the record,
// and only after a successful commit is the old blob released. A failed
// commit rolls the new blob back and leaves old record and old blob as
// they were.
func (c *Coordinator) Replace(ctx context.Context, up Upload, oldURL string, commit func(newURL string) error) (string, error) {
	if err := c.Validate(up); err != nil {
		return "", err
	}

	newURL, err := c.stage(ctx, up)
	if err != nil {
		return "", err
	}

	if err := commit(newURL); err != nil {
		c.discard(ctx, newURL)
		return "", err
	}

	c.Release(ctx, oldURL)
	return newURL, nil
}

// Release deletes a blob best-effort. The record mutation already
// committed, so a failure here is logged for retry, not surfaced.
func (c *Coordinator) Release(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := c.store.Remove(ctx, url); err != nil {
		logger.Error("Failed to release blob, manual cleanup may be required",
			logger.String("url", url),
			logger.ErrorField(err))
	}
}

// stage writes the blob under a generated name and returns its URL.
func (c *Coordinator) stage(ctx context.Context, up Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString(), ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := c.store.Put(ctx, name, up.Content, up.Size, contentType)
	if err != nil {
		return "", apperr.FileUpload(fmt.Sprintf("Failed to store audio file: %v", err))
	}
	return url, nil
}

// discard is the compensating delete for a blob whose record never
// committed. The original error is what the caller surfaces.
func (c *Coordinator) discard(ctx context.Context, url string) {
	if err := c.store.Remove(ctx, url); err != nil {
		logger.Error("Failed to delete orphaned blob after persistence failure",
			logger.String("url", url),
			logger.ErrorField(err))
	}
}

func allowedList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
