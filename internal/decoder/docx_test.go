package decoder

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>07/01/2025 Coffee Shop 4.50</w:t></w:r></w:p>
    <w:p><w:r><w:t>07/02/2025</w:t><w:tab/><w:t>Salary</w:t><w:tab/><w:t>2500.00</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

func TestDocxDecoder(t *testing.T) {
	d := NewDocxDecoder(logger.NewTestLogger())

	data := buildDocx(t, sampleDocumentXML)
	chunks, err := d.Decode(context.Background(), bytes.NewReader(data), "stmt.docx")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "07/01/2025 Coffee Shop 4.50", chunks[0].Text)
	assert.Equal(t, "07/02/2025\tSalary\t2500.00", chunks[1].Text)
	for _, c := range chunks {
		assert.Equal(t, models.SourceWordDocument, c.SourceKind)
		assert.Equal(t, "stmt.docx", c.SourceFileName)
	}
}

func TestDocxDecoderEmptyBody(t *testing.T) {
	d := NewDocxDecoder(logger.NewTestLogger())

	xml := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body></w:body></w:document>`
	chunks, err := d.Decode(context.Background(), bytes.NewReader(buildDocx(t, xml)), "empty.docx")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocxDecoderNotAZip(t *testing.T) {
	d := NewDocxDecoder(logger.NewTestLogger())

	_, err := d.Decode(context.Background(), bytes.NewReader([]byte("plain text")), "bad.docx")
	var decodeErr *models.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "bad.docx", decodeErr.FileName)
}

func TestDocxDecoderMissingDocumentPart(t *testing.T) {
	d := NewDocxDecoder(logger.NewTestLogger())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = d.Decode(context.Background(), bytes.NewReader(buf.Bytes()), "bad.docx")
	var decodeErr *models.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
