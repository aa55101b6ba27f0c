package decoder

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

// CSVDecoder emits one chunk per data row. Each chunk's text is a JSON
// object mapping header to cell value so downstream recognition can
// match columns by name. A header-only file yields zero chunks.
type CSVDecoder struct {
	logger logger.Logger
}

func NewCSVDecoder(log logger.Logger) *CSVDecoder {
	return &CSVDecoder{logger: log}
}

func (d *CSVDecoder) Kind() models.SourceKind {
	return models.SourceDelimitedText
}

func (d *CSVDecoder) Decode(ctx context.Context, r io.Reader, fileName string) ([]models.RawContentChunk, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var chunks []models.RawContentChunk
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			d.logger.Warn("skipping malformed row",
				logger.String("file", fileName),
				logger.Int("row", row),
				logger.Error(err),
			)
			continue
		}

		obj := make(map[string]string, len(header))
		for i, cell := range record {
			if i < len(header) && header[i] != "" {
				obj[header[i]] = strings.TrimSpace(cell)
			}
		}
		if len(obj) == 0 {
			continue
		}

		text, err := json.Marshal(obj)
		if err != nil {
			return nil, &models.DecodeError{FileName: fileName, Err: err}
		}

		chunks = append(chunks, models.RawContentChunk{
			Text:           string(text),
			SourceFileName: fileName,
			SourceKind:     models.SourceDelimitedText,
			ExtractedAt:    time.Now().UTC(),
		})
	}
	return chunks, nil
}
