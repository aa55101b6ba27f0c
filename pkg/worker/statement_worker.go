package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/finproc/statement-processor/internal/orchestrator"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/queue"
)

// StatementWorker consumes statement processing tasks and hands each
// job to the orchestrator.
type StatementWorker struct {
	BaseWorker
	orchestrator *orchestrator.Orchestrator
}

func NewStatementWorker(cfg queue.Config, orch *orchestrator.Orchestrator, log logger.Logger) *StatementWorker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
		},
	)

	w := &StatementWorker{
		BaseWorker: BaseWorker{
			server: server,
			mux:    asynq.NewServeMux(),
			logger: log,
		},
		orchestrator: orch,
	}
	w.mux.HandleFunc(queue.TaskTypeStatementProcess, w.handleStatementProcess)
	return w
}

func (w *StatementWorker) handleStatementProcess(ctx context.Context, t *asynq.Task) error {
	var task queue.StatementTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("unmarshal task: %w", err)
	}
	if task.JobID == "" {
		return fmt.Errorf("task payload missing job ID")
	}

	w.logger.Info("processing statement task", logger.String("jobId", task.JobID))
	return w.orchestrator.Run(ctx, task.JobID)
}
