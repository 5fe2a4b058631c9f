package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("put then serve path", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("NewLocalStore = %v", err)
		}

		url, err := store.Put(ctx, "song.mp3", strings.NewReader("audio-bytes"), 11, "audio/mpeg")
		if err != nil {
			t.Fatalf("Put = %v", err)
		}
		if !strings.HasPrefix(url, "/uploads/audio/") {
			t.Errorf("url = %q, want /uploads/audio/ prefix", url)
		}

		data, err := os.ReadFile(filepath.Join(dir, "song.mp3"))
		if err != nil {
			t.Fatalf("reading stored file: %v", err)
		}
		if string(data) != "audio-bytes" {
			t.Errorf("stored %q, want audio-bytes", data)
		}
	})

	t.Run("remove deletes the file", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("NewLocalStore = %v", err)
		}

		url, err := store.Put(ctx, "gone.mp3", strings.NewReader("x"), 1, "audio/mpeg")
		if err != nil {
			t.Fatalf("Put = %v", err)
		}
		if err := store.Remove(ctx, url); err != nil {
			t.Fatalf("Remove = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "gone.mp3")); !os.IsNotExist(err) {
			t.Error("file still exists after Remove")
		}
	})

	t.Run("strips path traversal from names", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("NewLocalStore = %v", err)
		}

		if _, err := store.Put(ctx, "../../etc/evil.mp3", strings.NewReader("x"), 1, "audio/mpeg"); err != nil {
			t.Fatalf("Put = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "evil.mp3")); err != nil {
			t.Errorf("sanitized file missing: %v", err)
		}
	})

	t.Run("creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "audio")
		if _, err := NewLocalStore(dir); err != nil {
			t.Fatalf("NewLocalStore = %v", err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory not created: %v", err)
		}
	})
}
