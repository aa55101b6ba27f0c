package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/models"
)

// Store keeps jobs in process memory. Suitable for tests and single
// node deployments without Redis.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func New() *Store {
	return &Store{jobs: make(map[string]*models.Job)}
}

func (s *Store) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.JobID]; exists {
		return fmt.Errorf("job %s already exists", job.JobID)
	}
	s.jobs[job.JobID] = cloneJob(job)
	return nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, jobstore.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *Store) Update(ctx context.Context, jobID string, update jobstore.Update) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, jobstore.ErrNotFound
	}

	applyUpdate(job, update)
	return cloneJob(job), nil
}

func (s *Store) List(ctx context.Context) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, cloneJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func applyUpdate(job *models.Job, update jobstore.Update) {
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
		job.Preview = append([]models.CanonicalTransaction(nil), update.Preview...)
	}
	job.Errors = append(job.Errors, update.AppendErrors...)
	job.UpdatedAt = time.Now().UTC()
}

// cloneJob copies a job so callers cannot mutate stored state.
func cloneJob(job *models.Job) *models.Job {
	c := *job
	c.Errors = append([]string(nil), job.Errors...)
	c.Preview = append([]models.CanonicalTransaction(nil), job.Preview...)
	return &c
}
