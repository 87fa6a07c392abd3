package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ridemap/admin-server/internal/config"
)

// How long resolved download URLs stay valid. Matches the transient,
// per-dashboard-session use of the links.
const downloadURLExpiry = 1 * time.Hour

// BlobStore is the blob-storage surface the report workflow needs. Listing
// returns object keys in the store's listing order.
type BlobStore interface {
	// List returns the object keys under prefix. With recurse false the
	// listing stops at the first delimiter, so nested "folders" are skipped.
	List(ctx context.Context, prefix string, recurse bool) ([]string, error)
	// ResolveURL returns a time-limited download URL for an object key.
	ResolveURL(ctx context.Context, object string) (string, error)
	// Upload stores one object. size must be the exact reader length.
	Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error
}

// MinioStore implements BlobStore on a single MinIO bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) List(ctx context.Context, prefix string, recurse bool) ([]string, error) {
	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recurse,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, object.Err)
		}
		// Non-recursive listings emit common prefixes as keys ending in "/".
		if !recurse && len(object.Key) > 0 && object.Key[len(object.Key)-1] == '/' {
			continue
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

func (s *MinioStore) ResolveURL(ctx context.Context, object string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, object, downloadURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", object, err)
	}
	return url.String(), nil
}

func (s *MinioStore) Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %q: %w", object, err)
	}
	return nil
}
