package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resona/config"
	"resona/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// minioServePrefix is the URL prefix the HTTP server proxies bucket
// objects under.
const minioServePrefix = "/static/"

// minioAudioPrefix is the object-key prefix audio blobs live under.
const minioAudioPrefix = "audio/"

// InitMinio connects the global MinIO client and ensures the bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("MinIO client initialized", logger.String("bucket", cfg.MinioBucket))
	return nil
}

// GetMinioClient returns the global MinIO client, nil before InitMinio.
func GetMinioClient() *minio.Client {
	return minioClient
}

// MinioStore keeps blobs in a MinIO bucket under the audio/ prefix.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore wraps an initialized MinIO client as a BlobStore.
func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

// Put uploads the blob and returns its serve URL.
func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := minioAudioPrefix + name
	opts := minio.PutObjectOptions{ContentType: contentType}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return minioServePrefix + key, nil
}

// Remove deletes the object behind a URL returned by Put.
func (s *MinioStore) Remove(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, minioServePrefix)
	if key == url || key == "" {
		return fmt.Errorf("not a MinIO blob URL: %s", url)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}
