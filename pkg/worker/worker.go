package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/finproc/statement-processor/pkg/logger"
)

type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// BaseWorker wraps an asynq server with a mux and shared lifecycle.
type BaseWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger logger.Logger
}

func (w *BaseWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

func (w *BaseWorker) Stop() error {
	w.server.Shutdown()
	return nil
}
