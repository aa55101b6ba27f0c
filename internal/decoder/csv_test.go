package decoder

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

func TestCSVDecoderEmitsRowObjects(t *testing.T) {
	d := NewCSVDecoder(logger.NewTestLogger())

	input := "Date,Description,Amount\n07/01/2025,Coffee,4.50\n07/02/2025,Salary,2500.00\n"
	chunks, err := d.Decode(context.Background(), strings.NewReader(input), "stmt.csv")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	var row map[string]string
	require.NoError(t, json.Unmarshal([]byte(chunks[0].Text), &row))
	assert.Equal(t, "07/01/2025", row["Date"])
	assert.Equal(t, "Coffee", row["Description"])
	assert.Equal(t, "4.50", row["Amount"])

	for _, c := range chunks {
		assert.Equal(t, "stmt.csv", c.SourceFileName)
		assert.Equal(t, models.SourceDelimitedText, c.SourceKind)
		assert.Zero(t, c.PageIndex)
	}
}

func TestCSVDecoderHeaderOnly(t *testing.T) {
	d := NewCSVDecoder(logger.NewTestLogger())

	chunks, err := d.Decode(context.Background(), strings.NewReader("Date,Description,Amount\n"), "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCSVDecoderEmptyFile(t *testing.T) {
	d := NewCSVDecoder(logger.NewTestLogger())

	chunks, err := d.Decode(context.Background(), strings.NewReader(""), "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCSVDecoderSkipsMalformedRows(t *testing.T) {
	log := logger.NewTestLogger()
	d := NewCSVDecoder(log)

	input := "Date,Description,Amount\n" +
		"07/01/2025,Coffee,4.50\n" +
		"07/02/2025,bad\"desc,1.00\n" +
		"07/03/2025,Salary,2500.00\n"
	chunks, err := d.Decode(context.Background(), strings.NewReader(input), "stmt.csv")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	warned := false
	for _, e := range log.Entries() {
		if e.Level == "WARN" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCSVDecoderRaggedRows(t *testing.T) {
	d := NewCSVDecoder(logger.NewTestLogger())

	input := "Date,Description,Amount\n07/01/2025,Coffee\n07/02/2025,Salary,2500.00,extra\n"
	chunks, err := d.Decode(context.Background(), strings.NewReader(input), "stmt.csv")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	var short map[string]string
	require.NoError(t, json.Unmarshal([]byte(chunks[0].Text), &short))
	assert.Equal(t, "Coffee", short["Description"])
	_, hasAmount := short["Amount"]
	assert.False(t, hasAmount)
}
