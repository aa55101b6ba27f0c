package orchestrator

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

	"github.com/finproc/statement-processor/internal/decoder"
	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/jobstore/inmemory"
	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/internal/normalize"
	"github.com/finproc/statement-processor/internal/receipt"
	"github.com/finproc/statement-processor/internal/recognize"
	"github.com/finproc/statement-processor/pkg/logger"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
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
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// recordingStore captures every update so tests can assert the state
// transition sequence.
type recordingStore struct {
	*inmemory.Store
	mu      sync.Mutex
	updates []jobstore.Update
}

func (r *recordingStore) Update(ctx context.Context, jobID string, update jobstore.Update) (*models.Job, error) {
	r.mu.Lock()
	r.updates = append(r.updates, update)
	r.mu.Unlock()
	return r.Store.Update(ctx, jobID, update)
}

type fakeEngine struct {
	text string
}

func (f *fakeEngine) Recognize(ctx context.Context, imageData []byte) (string, error) {
	return f.text, nil
}

func (f *fakeEngine) Close() error { return nil }

func newTestOrchestrator(ocrText string) (*Orchestrator, *recordingStore, *memStorage) {
	log := logger.NewTestLogger()
	store := &recordingStore{Store: inmemory.New()}
	objStorage := newMemStorage()

	registry := decoder.NewRegistry(
		decoder.NewCSVDecoder(log),
		decoder.NewPDFDecoder(log),
		decoder.NewDocxDecoder(log),
		decoder.NewImageDecoder(&fakeEngine{text: ocrText}, log),
	)

	orch := New(
		store,
		objStorage,
		registry,
		recognize.NewRecognizer(log),
		normalize.NewNormalizer(log),
		receipt.NewStructurer(log),
		log,
	)
	return orch, store, objStorage
}

func seedJob(t *testing.T, store jobstore.Store, objStorage *memStorage, jobID, fileName, content string) *models.Job {
	t.Helper()

	uploadRef := fmt.Sprintf("uploads/%s_%s", jobID, fileName)
	if content != "" {
		_, err := objStorage.Store(context.Background(), strings.NewReader(content), uploadRef, int64(len(content)))
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	job := &models.Job{
		JobID:      jobID,
		SourceFile: fileName,
		UploadRef:  uploadRef,
		Layout:     models.LayoutThreeColumn,
		DateFormat: models.DateFormatMDY,
		State:      models.JobQueued,
		Progress:   models.ProgressQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.Create(context.Background(), job))
	return job
}

const statementCSV = "Date,Description,Credit,Debit\n" +
	"07/01/2025,Coffee Shop,,4.50\n" +
	"07/02/2025,Salary,2500.00,\n"

func TestRunStatementToCompletion(t *testing.T) {
	orch, store, objStorage := newTestOrchestrator("")
	seedJob(t, store, objStorage, "j1", "stmt.csv", statementCSV)

	require.NoError(t, orch.Run(context.Background(), "j1"))

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.State)
	assert.Equal(t, models.ProgressDone, job.Progress)
	assert.Equal(t, "results/j1_output.csv", job.ResultRef)
	assert.Empty(t, job.Errors)
	require.Len(t, job.Preview, 2)
	assert.Equal(t, models.PolarityDebit, job.Preview[0].Polarity)
	assert.Equal(t, models.PolarityCredit, job.Preview[1].Polarity)

	result, err := objStorage.Get(context.Background(), "results/j1_output.csv")
	require.NoError(t, err)
	defer result.Close()
	content, err := io.ReadAll(result)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Date,Description,Amount")
	assert.Contains(t, string(content), "07/01/2025,Coffee Shop,-4.50")
	assert.Contains(t, string(content), "07/02/2025,Salary,2500.00")

	// The uploaded source never outlives the run.
	assert.False(t, objStorage.has("uploads/j1_stmt.csv"))
}

func TestRunStateSequence(t *testing.T) {
	orch, store, objStorage := newTestOrchestrator("")
	seedJob(t, store, objStorage, "j1", "stmt.csv", statementCSV)

	require.NoError(t, orch.Run(context.Background(), "j1"))

	var states []models.JobState
	var progress []float64
	for _, u := range store.updates {
		require.NotNil(t, u.State)
		states = append(states, *u.State)
		progress = append(progress, *u.Progress)
	}

	assert.Equal(t, []models.JobState{
		models.JobDecoding,
		models.JobExtractingFields,
		models.JobInterpreting,
		models.JobFormatting,
		models.JobCompleted,
	}, states)

	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, models.ProgressDone, progress[len(progress)-1])
}

func TestRunUnsupportedExtensionFailsBeforeDecoding(t *testing.T) {
	orch, store, objStorage := newTestOrchestrator("")
	seedJob(t, store, objStorage, "j1", "notes.txt", "some text")

	require.NoError(t, orch.Run(context.Background(), "j1"))

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.State)
	assert.Equal(t, models.ProgressDone, job.Progress)
	require.NotEmpty(t, job.Errors)
	assert.Contains(t, job.Errors[0], "unsupported file extension")

	// The single update goes straight to failed; decoding never starts.
	require.Len(t, store.updates, 1)
	assert.Equal(t, models.JobFailed, *store.updates[0].State)
}

func TestRunHeaderOnlyCSVFails(t *testing.T) {
	orch, store, objStorage := newTestOrchestrator("")
	seedJob(t, store, objStorage, "j1", "empty.csv", "Date,Description,Amount\n")

	require.NoError(t, orch.Run(context.Background(), "j1"))

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.State)
	assert.Equal(t, models.ProgressDone, job.Progress)
	require.NotEmpty(t, job.Errors)
	assert.Contains(t, job.Errors[0], "decoding")
	assert.False(t, objStorage.has("uploads/j1_empty.csv"))
}

func TestRunReceiptImage(t *testing.T) {
	receiptText := "Coffee Shop\n07/26/2025\n2 x Latte 9.00\nMuffin  3.50\nTOTAL: $12.50"
	orch, store, objStorage := newTestOrchestrator(receiptText)
	seedJob(t, store, objStorage, "j1", "receipt.jpg", "fake-image-bytes")

	require.NoError(t, orch.Run(context.Background(), "j1"))

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.State)
	require.Len(t, job.Preview, 1)

	tx := job.Preview[0]
	assert.Equal(t, "Coffee Shop - 2 x Latte", tx.Description)
	assert.Equal(t, "-12.5", tx.Amount.String())
	assert.Equal(t, models.PolarityDebit, tx.Polarity)
	assert.Equal(t, "receipt.jpg", tx.SourceReference)
}

func TestRunImageThatIsNotAReceiptFails(t *testing.T) {
	orch, store, objStorage := newTestOrchestrator("just a cat photo caption")
	seedJob(t, store, objStorage, "j1", "cat.png", "fake-image-bytes")

	require.NoError(t, orch.Run(context.Background(), "j1"))

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.State)
	require.NotEmpty(t, job.Errors)
	assert.Contains(t, job.Errors[len(job.Errors)-1], "interpreting")
}

func TestRunPreviewCapped(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Date,Description,Amount\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&sb, "07/%02d/2025,Purchase %d,%d.00\n", i, i, i)
	}

	orch, store, objStorage := newTestOrchestrator("")
	seedJob(t, store, objStorage, "j1", "stmt.csv", sb.String())

	require.NoError(t, orch.Run(context.Background(), "j1"))

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.State)
	assert.Len(t, job.Preview, PreviewSize)
	assert.Equal(t, "Purchase 1", job.Preview[0].Description)
}

func TestRunTerminalJobIsNoOp(t *testing.T) {
	orch, store, objStorage := newTestOrchestrator("")
	seedJob(t, store, objStorage, "j1", "stmt.csv", statementCSV)

	failed := models.JobFailed
	progress := models.ProgressDone
	_, err := store.Update(context.Background(), "j1", jobstore.Update{State: &failed, Progress: &progress})
	require.NoError(t, err)
	before := len(store.updates)

	require.NoError(t, orch.Run(context.Background(), "j1"))
	assert.Len(t, store.updates, before)

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.State)
}

func TestRunUnknownJob(t *testing.T) {
	orch, _, _ := newTestOrchestrator("")
	err := orch.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jobstore.ErrNotFound))
}
