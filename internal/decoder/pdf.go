package decoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

const pdfPageWorkers = 4

// PDFDecoder extracts one chunk per page. Pages are processed in
// parallel but land in a slice indexed by page number, so chunk order
// always matches page order.
type PDFDecoder struct {
	logger logger.Logger
}

func NewPDFDecoder(log logger.Logger) *PDFDecoder {
	return &PDFDecoder{logger: log}
}

func (d *PDFDecoder) Kind() models.SourceKind {
	return models.SourcePagedDocument
}

func (d *PDFDecoder) Decode(ctx context.Context, r io.Reader, fileName string) ([]models.RawContentChunk, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}

	numPages := pdfReader.NumPage()
	chunks := make([]models.RawContentChunk, numPages)
	extractedAt := time.Now().UTC()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pdfPageWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var text string
			page := pdfReader.Page(pageNum)
			if !page.V.IsNull() {
				pageText, err := page.GetPlainText(nil)
				if err != nil {
					return fmt.Errorf("page %d: %w", pageNum, err)
				}
				text = pageText
			}

			chunks[pageNum-1] = models.RawContentChunk{
				Text:           strings.TrimSpace(text),
				SourceFileName: fileName,
				SourceKind:     models.SourcePagedDocument,
				PageIndex:      pageNum,
				ExtractedAt:    extractedAt,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}
	return chunks, nil
}
