package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/storage"
)

// Storage keeps objects in a MinIO bucket. The bucket is created on
// startup when missing.
type Storage struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func New(ctx context.Context, cfg storage.Config, log logger.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Storage{client: client, bucket: cfg.Bucket, logger: log}, nil
}

func (s *Storage) Store(ctx context.Context, reader io.Reader, key string, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{})
	if err != nil {
		s.logger.Error("failed to store object",
			logger.String("bucket", s.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("store object: %w", err)
	}
	return key, nil
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			s.logger.Error("error listing objects", logger.Error(obj.Err))
			continue
		}
		if obj.LastModified.Before(threshold) {
			if err := s.Delete(ctx, obj.Key); err != nil {
				s.logger.Error("failed to delete expired object",
					logger.String("key", obj.Key),
					logger.Error(err),
				)
				continue
			}
			s.logger.Info("deleted expired object",
				logger.String("key", obj.Key),
				logger.Time("lastModified", obj.LastModified),
			)
		}
	}
	return nil
}
