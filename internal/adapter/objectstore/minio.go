package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// MinioStore uploads delivery artifacts to an S3-compatible store. It carries
// no retry logic; callers decide what is worth retrying.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

func New(ctx context.Context, cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string, opts port.PutOptions) (port.ObjectRef, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: opts.CacheControl,
	})
	if err != nil {
		return port.ObjectRef{}, &domain.StorageError{Key: key, Err: err}
	}
	return s.ref(key), nil
}

func (s *MinioStore) Get(ctx context.Context, key string) (port.ObjectRef, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return port.ObjectRef{}, domain.ErrNotFound
		}
		return port.ObjectRef{}, &domain.StorageError{Key: key, Err: err}
	}
	return s.ref(key), nil
}

func (s *MinioStore) ref(key string) port.ObjectRef {
	return port.ObjectRef{
		Key: key,
		URL: s.publicBase + "/" + key,
	}
}

var _ port.ObjectStore = (*MinioStore)(nil)
