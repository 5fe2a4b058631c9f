package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketStats summarizes a bucket or prefix.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// AdminClient wraps a MinIO client for the bucket-inspection subcommand.
type AdminClient struct {
	client *minio.Client
	bucket string
}

// NewAdminClient creates an AdminClient for one bucket.
func NewAdminClient(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*AdminClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &AdminClient{client: client, bucket: bucket}, nil
}

// ListObjects prints the objects under prefix and returns their stats.
func (a *AdminClient) ListObjects(ctx context.Context, prefix string) (*BucketStats, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", a.bucket)
	}

	stats := &BucketStats{}
	var keys []string
	sizes := make(map[string]int64)

	objectCh := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		keys = append(keys, object.Key)
		sizes[object.Key] = object.Size
	}

	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%12d  %s\n", sizes[key], key)
	}
	fmt.Printf("\n%d objects, %.2f MB total\n", stats.TotalObjects, float64(stats.TotalSize)/(1024*1024))

	return stats, nil
}

// DeletePrefix removes every object under prefix.
func (a *AdminClient) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, fmt.Errorf("refusing to delete with an empty prefix")
	}

	var deleted int64
	objectCh := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return deleted, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if err := a.client.RemoveObject(ctx, a.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return deleted, fmt.Errorf("failed to remove object %s: %w", object.Key, err)
		}
		deleted++
	}

	return deleted, nil
}
