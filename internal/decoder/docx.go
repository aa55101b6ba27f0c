package decoder

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

// DocxDecoder reads the word/document.xml part of a .docx archive and
// emits one chunk per non-empty paragraph. Paragraph boundaries usually
// line up with statement rows in exported documents.
type DocxDecoder struct {
	logger logger.Logger
}

func NewDocxDecoder(log logger.Logger) *DocxDecoder {
	return &DocxDecoder{logger: log}
}

func (d *DocxDecoder) Kind() models.SourceKind {
	return models.SourceWordDocument
}

func (d *DocxDecoder) Decode(ctx context.Context, r io.Reader, fileName string) ([]models.RawContentChunk, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, &models.DecodeError{FileName: fileName, Err: err}
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, &models.DecodeError{FileName: fileName, Err: err}
			}
			break
		}
	}
	if docXML == nil {
		return nil, &models.DecodeError{FileName: fileName, Err: errors.New("word/document.xml not found")}
	}

	paragraphs, err := extractParagraphs(docXML)
	if err != nil {
		return nil, &models.DecodeError{FileName: fileName, Err: err}
	}

	extractedAt := time.Now().UTC()
	var chunks []models.RawContentChunk
	for _, p := range paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p == "" {
			continue
		}
		chunks = append(chunks, models.RawContentChunk{
			Text:           p,
			SourceFileName: fileName,
			SourceKind:     models.SourceWordDocument,
			ExtractedAt:    extractedAt,
		})
	}
	return chunks, nil
}

// extractParagraphs walks the WordprocessingML token stream collecting
// text runs, splitting on paragraph and tab boundaries.
func extractParagraphs(docXML []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if current.Len() > 0 {
		paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
	}
	return paragraphs, nil
}
