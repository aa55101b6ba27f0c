package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/jobstore/inmemory"
	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Store(ctx context.Context, reader io.Reader, key string, size int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *memStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	return nil
}

type fakeQueue struct {
	enqueued []string
	err      error
}

func (f *fakeQueue) EnqueueStatement(ctx context.Context, jobID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, jobID)
	return nil
}

func (f *fakeQueue) Close() error { return nil }

type fakeChecker struct{}

func (fakeChecker) Supported(fileName string) bool {
	return strings.HasSuffix(strings.ToLower(fileName), ".csv")
}

func (fakeChecker) Extensions() []string { return []string{".csv"} }

func newTestService() (*StatementService, jobstore.Store, *memStorage, *fakeQueue) {
	store := inmemory.New()
	objStorage := newMemStorage()
	q := &fakeQueue{}
	svc := NewStatementService(store, objStorage, q, fakeChecker{}, logger.NewTestLogger())
	return svc, store, objStorage, q
}

func TestSubmitQueuesJob(t *testing.T) {
	svc, store, objStorage, q := newTestService()

	content := "Date,Description,Amount\n07/01/2025,Coffee,4.50\n"
	job, err := svc.Submit(context.Background(), "stmt.csv", strings.NewReader(content), int64(len(content)), "", "")
	require.NoError(t, err)

	assert.Equal(t, models.JobQueued, job.State)
	assert.Equal(t, models.ProgressQueued, job.Progress)
	assert.Equal(t, models.LayoutThreeColumn, job.Layout)
	assert.Equal(t, models.DateFormatMDY, job.DateFormat)
	assert.Equal(t, []string{job.JobID}, q.enqueued)

	stored, err := store.Get(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.UploadRef, stored.UploadRef)

	upload, err := objStorage.Get(context.Background(), job.UploadRef)
	require.NoError(t, err)
	defer upload.Close()
	data, err := io.ReadAll(upload)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSubmitExplicitOptions(t *testing.T) {
	svc, _, _, _ := newTestService()

	job, err := svc.Submit(context.Background(), "stmt.csv", strings.NewReader("x"), 1,
		models.LayoutFourColumn, models.DateFormatDMY)
	require.NoError(t, err)
	assert.Equal(t, models.LayoutFourColumn, job.Layout)
	assert.Equal(t, models.DateFormatDMY, job.DateFormat)
}

func TestSubmitRejectsUnknownOptions(t *testing.T) {
	svc, _, _, q := newTestService()

	_, err := svc.Submit(context.Background(), "stmt.csv", strings.NewReader("x"), 1,
		models.Layout("2-column"), "")
	assert.Error(t, err)

	_, err = svc.Submit(context.Background(), "stmt.csv", strings.NewReader("x"), 1,
		"", models.DateFormat("YYYY"))
	assert.Error(t, err)

	assert.Empty(t, q.enqueued)
}

func TestSubmitUnsupportedExtensionFailsImmediately(t *testing.T) {
	svc, store, objStorage, q := newTestService()

	job, err := svc.Submit(context.Background(), "notes.txt", strings.NewReader("text"), 4, "", "")
	require.NoError(t, err)

	assert.Equal(t, models.JobFailed, job.State)
	assert.Equal(t, models.ProgressDone, job.Progress)
	require.NotEmpty(t, job.Errors)
	assert.Contains(t, job.Errors[0], "unsupported file extension")
	assert.Empty(t, q.enqueued)

	// Nothing was uploaded for a rejected file.
	objStorage.mu.Lock()
	assert.Empty(t, objStorage.objects)
	objStorage.mu.Unlock()

	stored, err := store.Get(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, stored.State)
}

func TestSubmitEnqueueFailureMarksJobFailed(t *testing.T) {
	store := inmemory.New()
	q := &fakeQueue{err: errors.New("redis down")}
	svc := NewStatementService(store, newMemStorage(), q, fakeChecker{}, logger.NewTestLogger())

	_, err := svc.Submit(context.Background(), "stmt.csv", strings.NewReader("x"), 1, "", "")
	require.Error(t, err)

	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobFailed, jobs[0].State)
}

func TestGetArtifact(t *testing.T) {
	svc, store, objStorage, _ := newTestService()

	job, err := svc.Submit(context.Background(), "stmt.csv", strings.NewReader("x"), 1, "", "")
	require.NoError(t, err)

	// Not completed yet.
	_, err = svc.GetArtifact(context.Background(), job.JobID)
	assert.ErrorIs(t, err, ErrResultNotReady)

	// Simulate a finished run.
	resultRef := "results/" + job.JobID + "_output.csv"
	_, err = objStorage.Store(context.Background(), strings.NewReader("Date,Description,Amount\n"), resultRef, 0)
	require.NoError(t, err)
	completed := models.JobCompleted
	progress := models.ProgressDone
	_, err = store.Update(context.Background(), job.JobID, jobstore.Update{
		State: &completed, Progress: &progress, ResultRef: &resultRef,
	})
	require.NoError(t, err)

	artifact, err := svc.GetArtifact(context.Background(), job.JobID)
	require.NoError(t, err)
	defer artifact.Close()
	data, err := io.ReadAll(artifact)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount\n", string(data))
}

func TestGetStatusUnknownJob(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
