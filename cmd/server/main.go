package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finproc/statement-processor/api/handlers"
	"github.com/finproc/statement-processor/api/routes"
	"github.com/finproc/statement-processor/config"
	"github.com/finproc/statement-processor/internal/service"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/queue"
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

	ctx := context.Background()

	objStorage, err := service.NewStorageBackend(ctx, cfg, log.Named("storage"))
	if err != nil {
		log.Fatal("failed to init storage", logger.Error(err))
	}
	store, err := service.NewJobStore(cfg)
	if err != nil {
		log.Fatal("failed to init job store", logger.Error(err))
	}

	engine, err := service.NewOCREngine(ctx, cfg, log.Named("ocr"))
	if err != nil {
		log.Fatal("failed to init OCR engine", logger.Error(err))
	}
	defer engine.Close()
	registry := service.NewDecoderRegistry(engine, log.Named("decoder"))

	q := queue.NewAsynqQueue(cfg.Queue)
	defer q.Close()

	statementService := service.NewStatementService(store, objStorage, q, registry, log.Named("service"))

	h := handlers.NewHandlers(statementService, cfg.Server.MaxUploadMB<<20, log.Named("api"))
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, cfg.Server.AllowedOrigin)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Info("server starting", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
	}
}
