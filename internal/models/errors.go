package models

import "fmt"

// DecodeError reports an input file that is unreadable or corrupt for its
// declared kind. Fatal to the job.
type DecodeError struct {
	FileName string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.FileName, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a file extension outside the supported
// set. Raised before decoding begins; fatal to the job.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file extension: %s", e.Extension)
}

// EmptyResultError reports a pipeline stage that produced zero usable
// records. Fatal to the job.
type EmptyResultError struct {
	Stage string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("stage %s produced no usable records", e.Stage)
}

// SerializationError reports an invalid layout or date-format choice.
// Raised before any output is written; fatal to the job.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization rejected: %s", e.Reason)
}
