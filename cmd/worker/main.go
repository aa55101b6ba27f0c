package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finproc/statement-processor/config"
	"github.com/finproc/statement-processor/internal/service"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/worker"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Logger.Level),
		logger.WithEncoding(cfg.Logger.Encoding),
		logger.WithOutputPaths(cfg.Logger.OutputPaths),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	objStorage, err := service.NewStorageBackend(ctx, cfg, log.Named("storage"))
	if err != nil {
		log.Error("failed to init storage", logger.Error(err))
		os.Exit(1)
	}
	store, err := service.NewJobStore(cfg)
	if err != nil {
		log.Error("failed to init job store", logger.Error(err))
		os.Exit(1)
	}

	engine, err := service.NewOCREngine(ctx, cfg, log.Named("ocr"))
	if err != nil {
		log.Error("failed to init OCR engine", logger.Error(err))
		os.Exit(1)
	}
	defer engine.Close()
	registry := service.NewDecoderRegistry(engine, log.Named("decoder"))

	orch := service.NewOrchestrator(store, objStorage, registry, log)

	// Sweep stale uploads and results once an hour. Job records expire on
	// their own; their objects should not outlive them.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := objStorage.CleanupBefore(ctx, time.Now().Add(-24*time.Hour)); err != nil {
					log.Warn("storage cleanup failed", logger.Error(err))
				}
			}
		}
	}()

	statementWorker := worker.NewStatementWorker(cfg.Queue, orch, log.Named("worker"))
	if err := statementWorker.Start(ctx); err != nil {
		log.Error("failed to start worker", logger.Error(err))
		os.Exit(1)
	}
	log.Info("worker started", logger.Int("concurrency", cfg.Queue.Concurrency))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down worker")
	statementWorker.Stop()
	log.Info("worker stopped")
}
