package jobstore

import (
	"context"
	"errors"

	"github.com/finproc/statement-processor/internal/models"
)

// ErrNotFound is returned when a job ID has no record.
var ErrNotFound = errors.New("job not found")

// Update describes a partial job update. Nil fields are left untouched;
// AppendErrors appends rather than replaces, so the job error list only
// ever grows.
type Update struct {
	State        *models.JobState
	Progress     *float64
	ResultRef    *string
	Preview      []models.CanonicalTransaction
	AppendErrors []string
}

// Store persists job lifecycle records.
type Store interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, jobID string) (*models.Job, error)
	Update(ctx context.Context, jobID string, update Update) (*models.Job, error)
	List(ctx context.Context) ([]*models.Job, error)
}
