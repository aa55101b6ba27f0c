package storage

import (
	"context"
	"io"
	"time"
)

// Type selects a storage backend.
type Type string

const (
	TypeS3    Type = "s3"
	TypeMinio Type = "minio"
)

// Config carries the connection settings shared by both backends.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Storage holds uploaded source documents and produced CSV artifacts.
type Storage interface {
	// Store writes the object and returns its key.
	Store(ctx context.Context, reader io.Reader, key string, size int64) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes objects last modified before the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}
