package models

import "time"

// JobState is a node in the processing state machine. Completed and failed
// are terminal; a failed job is never retried, only resubmitted.
type JobState string

const (
	JobQueued           JobState = "queued"
	JobDecoding         JobState = "decoding"
	JobExtractingFields JobState = "extracting_fields"
	JobInterpreting     JobState = "interpreting"
	JobFormatting       JobState = "formatting"
	JobCompleted        JobState = "completed"
	JobFailed           JobState = "failed"
)

// Terminal reports whether the state permits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Progress checkpoints pinned per state. Progress is monotonically
// non-decreasing within a job and reaches 1.0 in both terminal states.
const (
	ProgressQueued       = 0.0
	ProgressDecoding     = 0.1
	ProgressAfterDecode  = 0.3
	ProgressInterpreting = 0.6
	ProgressFormatting   = 0.9
	ProgressDone         = 1.0
)

// Job tracks one submitted file from submission to terminal state. Only
// the orchestrator mutates a job once it has been created.
type Job struct {
	JobID      string     `json:"jobId"`
	SourceFile string     `json:"sourceFile"`
	UploadRef  string     `json:"uploadRef,omitempty"`
	Layout     Layout     `json:"layout"`
	DateFormat DateFormat `json:"dateFormat"`

	State    JobState `json:"state"`
	Progress float64  `json:"progress"`
	// Errors is append-only; it is the single surface through which a
	// caller learns what went wrong.
	Errors    []string               `json:"errors,omitempty"`
	ResultRef string                 `json:"resultRef,omitempty"`
	Preview   []CanonicalTransaction `json:"preview,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
