package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/finproc/statement-processor/internal/ocr"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/queue"
	"github.com/finproc/statement-processor/pkg/storage"
)

// Config is the full runtime configuration, loaded from an optional
// YAML file with environment variable overrides on top. Environment
// always wins.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Queue     queue.Config        `yaml:"queue"`
	Storage   StorageConfig       `yaml:"storage"`
	JobStore  JobStoreConfig      `yaml:"job_store"`
	OCR       OCRConfig           `yaml:"ocr"`
	Logger    logger.Config       `yaml:"logger"`
	Tesseract ocr.TesseractConfig `yaml:"tesseract"`
	Textract  ocr.TextractConfig  `yaml:"textract"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type StorageConfig struct {
	Type   storage.Type   `yaml:"type"`
	Config storage.Config `yaml:",inline"`
}

type JobStoreConfig struct {
	// Type is "redis" or "memory".
	Type      string `yaml:"type"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

type OCRConfig struct {
	// Engine is "tesseract" or "textract".
	Engine string `yaml:"engine"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 20,
		},
		Queue: queue.DefaultConfig(),
		Storage: StorageConfig{
			Type: storage.TypeMinio,
			Config: storage.Config{
				Endpoint: "localhost:9000",
				Bucket:   "statements",
			},
		},
		JobStore: JobStoreConfig{
			Type:      "redis",
			RedisAddr: "localhost:6379",
		},
		OCR: OCRConfig{Engine: "tesseract"},
		Logger: logger.Config{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stdout"},
		},
		Tesseract: ocr.DefaultTesseractConfig(),
	}
}

// Load reads configuration. A missing .env or YAML file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setInt64(&cfg.Server.MaxUploadMB, "MAX_UPLOAD_MB")
	setString(&cfg.Server.AllowedOrigin, "ALLOWED_ORIGIN")

	setString(&cfg.Queue.RedisAddr, "REDIS_ADDR")
	setInt(&cfg.Queue.RedisDB, "REDIS_DB")
	setInt(&cfg.Queue.Concurrency, "WORKER_CONCURRENCY")

	setString(&cfg.JobStore.Type, "JOB_STORE")
	setString(&cfg.JobStore.RedisAddr, "REDIS_ADDR")
	setInt(&cfg.JobStore.RedisDB, "REDIS_DB")

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = storage.Type(v)
	}
	setString(&cfg.Storage.Config.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.Config.Region, "STORAGE_REGION")
	setString(&cfg.Storage.Config.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.Config.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Config.Bucket, "STORAGE_BUCKET")
	setBool(&cfg.Storage.Config.UseSSL, "STORAGE_USE_SSL")

	setString(&cfg.OCR.Engine, "OCR_ENGINE")
	setString(&cfg.Textract.Region, "AWS_REGION")
	setString(&cfg.Textract.AccessKey, "AWS_ACCESS_KEY")
	setString(&cfg.Textract.SecretKey, "AWS_SECRET_KEY")

	setString(&cfg.Logger.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
