package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/queue"
	"github.com/finproc/statement-processor/pkg/storage"
)

var (
	ErrJobNotFound    = jobstore.ErrNotFound
	ErrResultNotReady = errors.New("job has no result yet")
)

// SupportedChecker reports whether a file name can be decoded. The
// decoder registry satisfies it.
type SupportedChecker interface {
	Supported(fileName string) bool
	Extensions() []string
}

// StatementService is the API-facing surface: it accepts uploads,
// exposes job status and hands out finished artifacts. Processing
// itself happens in the worker.
type StatementService struct {
	store    jobstore.Store
	storage  storage.Storage
	queue    queue.Queue
	supports SupportedChecker
	logger   logger.Logger
}

func NewStatementService(
	store jobstore.Store,
	objStorage storage.Storage,
	q queue.Queue,
	supports SupportedChecker,
	log logger.Logger,
) *StatementService {
	return &StatementService{
		store:    store,
		storage:  objStorage,
		queue:    q,
		supports: supports,
		logger:   log,
	}
}

// Submit registers a new job for an uploaded document and enqueues it.
// Unspecified layout and date format fall back to the three-column
// layout with month-first dates. A file with an unsupported extension
// still gets a job record, immediately failed, so the caller has a
// status to poll.
func (s *StatementService) Submit(ctx context.Context, fileName string, content io.Reader, size int64, layout models.Layout, dateFormat models.DateFormat) (*models.Job, error) {
	if layout == "" {
		layout = models.LayoutThreeColumn
	}
	if dateFormat == "" {
		dateFormat = models.DateFormatMDY
	}
	if !layout.Valid() {
		return nil, fmt.Errorf("unknown layout %q", layout)
	}
	if !dateFormat.Valid() {
		return nil, fmt.Errorf("unknown date format %q", dateFormat)
	}

	now := time.Now().UTC()
	job := &models.Job{
		JobID:      uuid.New().String(),
		SourceFile: fileName,
		Layout:     layout,
		DateFormat: dateFormat,
		State:      models.JobQueued,
		Progress:   models.ProgressQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if !s.supports.Supported(fileName) {
		unsupported := &models.UnsupportedFormatError{Extension: extOf(fileName)}
		if err := s.store.Create(ctx, job); err != nil {
			return nil, fmt.Errorf("create job: %w", err)
		}
		failed := models.JobFailed
		progress := models.ProgressDone
		updated, err := s.store.Update(ctx, job.JobID, jobstore.Update{
			State:        &failed,
			Progress:     &progress,
			AppendErrors: []string{unsupported.Error()},
		})
		if err != nil {
			return nil, fmt.Errorf("fail job: %w", err)
		}
		s.logger.Warn("rejected unsupported upload",
			logger.String("jobId", job.JobID),
			logger.String("file", fileName),
		)
		return updated, nil
	}

	uploadRef := fmt.Sprintf("uploads/%s_%s", job.JobID, fileName)
	if _, err := s.storage.Store(ctx, content, uploadRef, size); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	job.UploadRef = uploadRef

	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.queue.EnqueueStatement(ctx, job.JobID); err != nil {
		failed := models.JobFailed
		progress := models.ProgressDone
		if _, uerr := s.store.Update(ctx, job.JobID, jobstore.Update{
			State:        &failed,
			Progress:     &progress,
			AppendErrors: []string{"failed to enqueue job: " + err.Error()},
		}); uerr != nil {
			s.logger.Error("failed to mark unqueued job", logger.Error(uerr))
		}
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.logger.Info("job submitted",
		logger.String("jobId", job.JobID),
		logger.String("file", fileName),
		logger.String("layout", string(layout)),
	)
	return job, nil
}

// GetStatus returns the current job record.
func (s *StatementService) GetStatus(ctx context.Context, jobID string) (*models.Job, error) {
	return s.store.Get(ctx, jobID)
}

// GetArtifact streams the finished CSV for a completed job.
func (s *StatementService) GetArtifact(ctx context.Context, jobID string) (io.ReadCloser, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.State != models.JobCompleted || job.ResultRef == "" {
		return nil, ErrResultNotReady
	}
	return s.storage.Get(ctx, job.ResultRef)
}

// ListJobs returns all known jobs, newest first.
func (s *StatementService) ListJobs(ctx context.Context) ([]*models.Job, error) {
	return s.store.List(ctx)
}

// SupportedExtensions exposes the decodable extension list for API
// error messages.
func (s *StatementService) SupportedExtensions() []string {
	return s.supports.Extensions()
}

func extOf(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
