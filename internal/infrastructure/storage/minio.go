// Package storage persists attachment bytes in an S3-compatible object
// store. The service layer validates type and size before anything lands
// here.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/clienttracker/crm-system/internal/core/ports"
)

// Config captures the settings for the attachment object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ObjectStore implements ports.FileStore on MinIO.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

func NewObjectStore(cfg Config) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the attachment bucket when it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *ObjectStore) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*ports.StoredFile, error) {
	info, err := s.client.PutObject(ctx, s.bucket, filename, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", filename, err)
	}
	return &ports.StoredFile{
		StoredName:  filename,
		Size:        info.Size,
		ContentType: contentType,
	}, nil
}

func (s *ObjectStore) Delete(ctx context.Context, storedName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, storedName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", storedName, err)
	}
	return nil
}
