package ocr

import "context"

// Engine extracts plain text from a single image. Implementations are
// safe for concurrent use.
type Engine interface {
	// Recognize runs text recognition over raw image bytes and returns
	// the extracted text, empty when the image holds none.
	Recognize(ctx context.Context, imageData []byte) (string, error)

	Close() error
}
