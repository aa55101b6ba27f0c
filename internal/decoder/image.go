package decoder

import (
	"context"
	"io"
	"time"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/internal/ocr"
	"github.com/finproc/statement-processor/pkg/logger"
)

// ImageDecoder runs OCR over a receipt photo and emits a single chunk
// holding the recognized text. An image with no recognizable text
// yields zero chunks rather than an error.
type ImageDecoder struct {
	engine ocr.Engine
	logger logger.Logger
}

func NewImageDecoder(engine ocr.Engine, log logger.Logger) *ImageDecoder {
	return &ImageDecoder{engine: engine, logger: log}
}

func (d *ImageDecoder) Kind() models.SourceKind {
	return models.SourceImage
}

func (d *ImageDecoder) Decode(ctx context.Context, r io.Reader, fileName string) ([]models.RawContentChunk, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}

	text, err := d.engine.Recognize(ctx, imageData)
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}
	if text == "" {
		d.logger.Warn("no text recognized in image", logger.String("file", fileName))
		return nil, nil
	}

	return []models.RawContentChunk{{
		Text:           text,
		SourceFileName: fileName,
		SourceKind:     models.SourceImage,
		ExtractedAt:    time.Now().UTC(),
	}}, nil
}
