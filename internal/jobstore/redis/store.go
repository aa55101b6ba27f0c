package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/models"
)

const (
	keyPrefix  = "job:"
	defaultTTL = 24 * time.Hour
)

// Store persists jobs as JSON values in Redis. Records expire after the
// TTL; processed statements are not meant to linger.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client) *Store {
	return &Store{client: client, ttl: defaultTTL}
}

func (s *Store) Create(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+job.JobID, data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.JobID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*models.Job, error) {
	data, err := s.client.Get(ctx, keyPrefix+jobID).Bytes()
	if err == redis.Nil {
		return nil, jobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *Store) Update(ctx context.Context, jobID string, update jobstore.Update) (*models.Job, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if update.State != nil {
		job.State = *update.State
	}
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.ResultRef != nil {
		job.ResultRef = *update.ResultRef
	}
	if update.Preview != nil {
		job.Preview = update.Preview
	}
	job.Errors = append(job.Errors, update.AppendErrors...)
	job.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+jobID, data, redis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("store job: %w", err)
	}
	return job, nil
}

func (s *Store) List(ctx context.Context) ([]*models.Job, error) {
	var jobs []*models.Job

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get job: %w", err)
		}
		var job models.Job
		if err := json.Unmarshal(data, &job); err != nil {
			continue
		}
		jobs = append(jobs, &job)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}
