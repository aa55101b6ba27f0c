package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TaskTypeStatementProcess is the only task kind the pipeline enqueues.
const TaskTypeStatementProcess = "statement:process"

// StatementTask is the payload carried through the queue. Everything
// the worker needs lives in the job record; the payload is just the key.
type StatementTask struct {
	JobID string `json:"jobId"`
}

// Queue enqueues processing work for the worker fleet.
type Queue interface {
	EnqueueStatement(ctx context.Context, jobID string) error
	Close() error
}

// Config carries queue connection settings shared by the client and the
// worker server.
type Config struct {
	RedisAddr      string         `yaml:"redis_addr"`
	RedisDB        int            `yaml:"redis_db"`
	Concurrency    int            `yaml:"concurrency"`
	ProcessTimeout time.Duration  `yaml:"process_timeout"`
	Queues         map[string]int `yaml:"queues"`
}

func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		Concurrency:    5,
		ProcessTimeout: 10 * time.Minute,
		Queues:         map[string]int{"default": 1},
	}
}

// AsynqQueue is the Redis-backed Queue implementation.
type AsynqQueue struct {
	client  *asynq.Client
	timeout time.Duration
}

func NewAsynqQueue(cfg Config) *AsynqQueue {
	return &AsynqQueue{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}),
		timeout: cfg.ProcessTimeout,
	}
}

// EnqueueStatement enqueues a job exactly once. Failed jobs stay
// failed, so retries are disabled; users resubmit instead.
func (q *AsynqQueue) EnqueueStatement(ctx context.Context, jobID string) error {
	payload, err := json.Marshal(StatementTask{JobID: jobID})
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	_, err = q.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeStatementProcess, payload),
		asynq.TaskID(jobID),
		asynq.MaxRetry(0),
		asynq.Timeout(q.timeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
