package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"resona/storage"

	"github.com/minio/minio-go/v7"
)

// minioProxyHandler streams objects out of the MinIO bucket for the
// /static/ URL space, so audio URLs work without exposing the bucket.
func minioProxyHandler(bucket string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objectPath := strings.TrimPrefix(r.URL.Path, "/static/")
		client := storage.GetMinioClient()
		if client == nil {
			http.Error(w, "Object storage not available", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		object, err := client.GetObject(ctx, bucket, objectPath, minio.GetObjectOptions{})
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer object.Close()

		stat, err := object.Stat()
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}

		contentType := stat.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=31536000")

		if _, err := io.Copy(w, object); err != nil {
			// The client likely disconnected mid-stream.
			return
		}
	}
}
