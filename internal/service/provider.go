package service

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/finproc/statement-processor/config"
	"github.com/finproc/statement-processor/internal/decoder"
	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/jobstore/inmemory"
	redisstore "github.com/finproc/statement-processor/internal/jobstore/redis"
	"github.com/finproc/statement-processor/internal/normalize"
	"github.com/finproc/statement-processor/internal/ocr"
	"github.com/finproc/statement-processor/internal/orchestrator"
	"github.com/finproc/statement-processor/internal/receipt"
	"github.com/finproc/statement-processor/internal/recognize"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/storage"
	miniostorage "github.com/finproc/statement-processor/pkg/storage/minio"
	s3storage "github.com/finproc/statement-processor/pkg/storage/s3"
)

// NewStorageBackend builds the configured object storage.
func NewStorageBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case storage.TypeMinio:
		return miniostorage.New(ctx, cfg.Storage.Config, log)
	case storage.TypeS3:
		return s3storage.New(ctx, cfg.Storage.Config, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// NewJobStore builds the configured job store.
func NewJobStore(cfg *config.Config) (jobstore.Store, error) {
	switch cfg.JobStore.Type {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr: cfg.JobStore.RedisAddr,
			DB:   cfg.JobStore.RedisDB,
		})
		return redisstore.New(client), nil
	case "memory":
		return inmemory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported job store type: %s", cfg.JobStore.Type)
	}
}

// NewOCREngine builds the configured recognition engine.
func NewOCREngine(ctx context.Context, cfg *config.Config, log logger.Logger) (ocr.Engine, error) {
	switch cfg.OCR.Engine {
	case "tesseract":
		return ocr.NewTesseractEngine(cfg.Tesseract, log)
	case "textract":
		return ocr.NewTextractEngine(ctx, cfg.Textract, log)
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.OCR.Engine)
	}
}

// NewDecoderRegistry wires the format decoders around an OCR engine.
func NewDecoderRegistry(engine ocr.Engine, log logger.Logger) *decoder.Registry {
	return decoder.NewRegistry(
		decoder.NewCSVDecoder(log.Named("csv")),
		decoder.NewPDFDecoder(log.Named("pdf")),
		decoder.NewDocxDecoder(log.Named("docx")),
		decoder.NewImageDecoder(engine, log.Named("image")),
	)
}

// NewOrchestrator assembles the full processing pipeline.
func NewOrchestrator(store jobstore.Store, objStorage storage.Storage, registry *decoder.Registry, log logger.Logger) *orchestrator.Orchestrator {
	return orchestrator.New(
		store,
		objStorage,
		registry,
		recognize.NewRecognizer(log.Named("recognize")),
		normalize.NewNormalizer(log.Named("normalize")),
		receipt.NewStructurer(log.Named("receipt")),
		log.Named("orchestrator"),
	)
}
