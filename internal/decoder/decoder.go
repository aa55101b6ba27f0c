package decoder

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/finproc/statement-processor/internal/models"
)

// Decoder turns one source document into ordered raw content chunks.
// Decoders return a *models.DecodeError when the document itself is
// unreadable; an empty but readable document yields zero chunks.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader, fileName string) ([]models.RawContentChunk, error)
	Kind() models.SourceKind
}

// Registry resolves a decoder from a file name's extension.
type Registry struct {
	byExtension map[string]Decoder
}

// NewRegistry wires the standard extension set. The ocrEngine handles
// every image extension.
func NewRegistry(csvDec, pdfDec, docxDec, imageDec Decoder) *Registry {
	return &Registry{
		byExtension: map[string]Decoder{
			".csv":  csvDec,
			".pdf":  pdfDec,
			".doc":  docxDec,
			".docx": docxDec,
			".jpg":  imageDec,
			".jpeg": imageDec,
			".png":  imageDec,
			".webp": imageDec,
		},
	}
}

// ForFile resolves the decoder for a file name. Unknown extensions
// return a *models.UnsupportedFormatError.
func (r *Registry) ForFile(fileName string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	dec, ok := r.byExtension[ext]
	if !ok {
		return nil, &models.UnsupportedFormatError{Extension: ext}
	}
	return dec, nil
}

// Supported reports whether the file name's extension has a decoder.
func (r *Registry) Supported(fileName string) bool {
	_, ok := r.byExtension[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// Extensions returns the supported extension list, for error messages
// and the API surface.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	return exts
}
