package decoder

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Recognize(ctx context.Context, imageData []byte) (string, error) {
	return f.text, f.err
}

func (f *fakeEngine) Close() error { return nil }

func TestImageDecoder(t *testing.T) {
	d := NewImageDecoder(&fakeEngine{text: "Coffee Shop\nTOTAL: 7.50"}, logger.NewTestLogger())

	chunks, err := d.Decode(context.Background(), bytes.NewReader([]byte("fake-image")), "receipt.jpg")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Coffee Shop\nTOTAL: 7.50", chunks[0].Text)
	assert.Equal(t, models.SourceImage, chunks[0].SourceKind)
	assert.Equal(t, "receipt.jpg", chunks[0].SourceFileName)
}

func TestImageDecoderNoText(t *testing.T) {
	log := logger.NewTestLogger()
	d := NewImageDecoder(&fakeEngine{text: ""}, log)

	chunks, err := d.Decode(context.Background(), bytes.NewReader([]byte("fake-image")), "blank.png")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	require.NotEmpty(t, log.Entries())
	assert.Equal(t, "WARN", log.Entries()[0].Level)
}

func TestImageDecoderEngineFailure(t *testing.T) {
	d := NewImageDecoder(&fakeEngine{err: errors.New("ocr exploded")}, logger.NewTestLogger())

	_, err := d.Decode(context.Background(), bytes.NewReader([]byte("fake-image")), "receipt.jpg")
	var decodeErr *models.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "receipt.jpg", decodeErr.FileName)
}
