package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finproc/statement-processor/internal/decoder"
	"github.com/finproc/statement-processor/internal/jobstore"
	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/internal/normalize"
	"github.com/finproc/statement-processor/internal/receipt"
	"github.com/finproc/statement-processor/internal/recognize"
	"github.com/finproc/statement-processor/internal/serialize"
	"github.com/finproc/statement-processor/pkg/logger"
	"github.com/finproc/statement-processor/pkg/storage"
)

// PreviewSize is how many leading transactions land on the job record.
const PreviewSize = 5

// Orchestrator drives one job through the processing state machine.
// Job state is written only at stage boundaries; the stages themselves
// run without touching the store.
type Orchestrator struct {
	store      jobstore.Store
	storage    storage.Storage
	registry   *decoder.Registry
	recognizer *recognize.Recognizer
	normalizer *normalize.Normalizer
	structurer *receipt.Structurer
	logger     logger.Logger
}

func New(
	store jobstore.Store,
	objStorage storage.Storage,
	registry *decoder.Registry,
	recognizer *recognize.Recognizer,
	normalizer *normalize.Normalizer,
	structurer *receipt.Structurer,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		storage:    objStorage,
		registry:   registry,
		recognizer: recognizer,
		normalizer: normalizer,
		structurer: structurer,
		logger:     log,
	}
}

// Run processes a queued job to a terminal state. Stage failures mark
// the job failed; only infrastructure errors reaching the store itself
// propagate to the caller. Running a job already in a terminal state is
// a no-op.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.State.Terminal() {
		o.logger.Info("job already terminal, skipping",
			logger.String("jobId", jobID),
			logger.String("state", string(job.State)),
		)
		return nil
	}

	log := o.logger.With(logger.String("jobId", jobID), logger.String("file", job.SourceFile))

	// Resolve the decoder before entering the decoding stage so a job
	// for an unsupported format never reports a decoding state.
	dec, err := o.registry.ForFile(job.SourceFile)
	if err != nil {
		return o.fail(ctx, jobID, err)
	}

	if err := o.transition(ctx, jobID, models.JobDecoding, models.ProgressDecoding, nil); err != nil {
		return err
	}

	// The uploaded source is transient; remove it however the job ends.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.storage.Delete(cleanupCtx, job.UploadRef); err != nil {
			log.Warn("failed to delete uploaded source", logger.Error(err))
		}
	}()

	upload, err := o.storage.Get(ctx, job.UploadRef)
	if err != nil {
		return o.fail(ctx, jobID, fmt.Errorf("fetch upload: %w", err))
	}
	chunks, err := dec.Decode(ctx, upload, job.SourceFile)
	upload.Close()
	if err != nil {
		return o.fail(ctx, jobID, err)
	}
	if len(chunks) == 0 {
		return o.fail(ctx, jobID, &models.EmptyResultError{Stage: "decoding"})
	}
	log.Info("decoded source document", logger.Int("chunks", len(chunks)))

	if err := o.transition(ctx, jobID, models.JobExtractingFields, models.ProgressAfterDecode, nil); err != nil {
		return err
	}

	var transactions []models.CanonicalTransaction
	var gaps []string
	if dec.Kind() == models.SourceImage {
		transactions, gaps = o.interpretReceipt(chunks)
	} else {
		transactions, gaps = o.interpretStatement(chunks)
	}

	if err := o.transition(ctx, jobID, models.JobInterpreting, models.ProgressInterpreting, gaps); err != nil {
		return err
	}
	if len(transactions) == 0 {
		return o.fail(ctx, jobID, &models.EmptyResultError{Stage: "interpreting"})
	}
	log.Info("interpreted transactions",
		logger.Int("transactions", len(transactions)),
		logger.Int("dropped", len(gaps)),
	)

	if err := o.transition(ctx, jobID, models.JobFormatting, models.ProgressFormatting, nil); err != nil {
		return err
	}

	output, err := serialize.Serialize(transactions, job.Layout, job.DateFormat)
	if err != nil {
		return o.fail(ctx, jobID, err)
	}

	resultRef := fmt.Sprintf("results/%s_output.csv", jobID)
	if _, err := o.storage.Store(ctx, strings.NewReader(output), resultRef, int64(len(output))); err != nil {
		return o.fail(ctx, jobID, fmt.Errorf("store result: %w", err))
	}

	preview := transactions
	if len(preview) > PreviewSize {
		preview = preview[:PreviewSize]
	}

	completed := models.JobCompleted
	progress := models.ProgressDone
	if _, err := o.store.Update(ctx, jobID, jobstore.Update{
		State:     &completed,
		Progress:  &progress,
		ResultRef: &resultRef,
		Preview:   preview,
	}); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	log.Info("job completed", logger.String("resultRef", resultRef))
	return nil
}

// interpretStatement runs the recognition and normalization stages over
// statement chunks.
func (o *Orchestrator) interpretStatement(chunks []models.RawContentChunk) ([]models.CanonicalTransaction, []string) {
	candidates := o.recognizer.Recognize(chunks)
	return o.normalizer.Normalize(candidates)
}

// interpretReceipt structures receipt OCR text into a single debit
// transaction. Image jobs never fall back to the statement path; a
// photo that does not read as a receipt produces nothing.
func (o *Orchestrator) interpretReceipt(chunks []models.RawContentChunk) ([]models.CanonicalTransaction, []string) {
	var transactions []models.CanonicalTransaction
	var gaps []string
	for i := range chunks {
		data := o.structurer.Structure(chunks[i].Text)
		if data == nil {
			gaps = append(gaps, fmt.Sprintf("image %s: text did not structure as a receipt", chunks[i].SourceFileName))
			continue
		}
		if tx := o.normalizer.NormalizeReceipt(data); tx != nil {
			tx.SourceReference = chunks[i].SourceFileName
			transactions = append(transactions, *tx)
		}
	}
	return transactions, gaps
}

func (o *Orchestrator) transition(ctx context.Context, jobID string, state models.JobState, progress float64, appendErrors []string) error {
	if _, err := o.store.Update(ctx, jobID, jobstore.Update{
		State:        &state,
		Progress:     &progress,
		AppendErrors: appendErrors,
	}); err != nil {
		return fmt.Errorf("transition job %s to %s: %w", jobID, state, err)
	}
	return nil
}

// fail marks the job failed with full progress and swallows the stage
// error; it has been recorded on the job, which is its surface.
func (o *Orchestrator) fail(ctx context.Context, jobID string, stageErr error) error {
	failed := models.JobFailed
	progress := models.ProgressDone
	if _, err := o.store.Update(ctx, jobID, jobstore.Update{
		State:        &failed,
		Progress:     &progress,
		AppendErrors: []string{stageErr.Error()},
	}); err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	o.logger.Warn("job failed",
		logger.String("jobId", jobID),
		logger.Error(stageErr),
	)
	return nil
}
