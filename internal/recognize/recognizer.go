package recognize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

// Field confidence is binary: 1.0 when a heuristic located a candidate,
// 0.0 when it did not. Calibrated scoring is out of scope for the
// regex-based recognizer.
const (
	ConfidenceFound   = 1.0
	ConfidenceMissing = 0.0
)

// Column header aliases for structured records, matched after
// lowercasing and trimming.
var (
	dateKeys        = []string{"date", "transaction date", "posted date", "posting date", "trans date", "value date"}
	descriptionKeys = []string{"description", "memo", "details", "payee", "narrative", "merchant", "name", "transaction"}
	amountKeys      = []string{"amount", "transaction amount", "value", "sum"}
	creditKeys      = []string{"credit", "credit amount", "deposit", "cr", "money in", "paid in"}
	debitKeys       = []string{"debit", "debit amount", "withdrawal", "dr", "money out", "paid out"}
)

// Date patterns tried in order against free text. Numeric forms come
// first, then month-name forms, then ISO.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
}

var (
	labeledCreditRe = regexp.MustCompile(`(?i)\b(?:credit|deposit|cr)\b[:\s]*([($£€¥]?\s*-?[\d,]+\.?\d*\)?)`)
	labeledDebitRe  = regexp.MustCompile(`(?i)\b(?:debit|withdrawal|dr)\b[:\s]*([($£€¥]?\s*-?[\d,]+\.?\d*\)?)`)
	amountRe        = regexp.MustCompile(`[($£€¥]\s*-?[\d,]+\.\d{2}\)?|\(?-?[\d,]+\.\d{2}\)?`)
	currencyRunes   = "$£€¥"

	pureDateRe   = regexp.MustCompile(`^[\d/\-.\s]+$`)
	pureAmountRe = regexp.MustCompile(`^[($£€¥\s]*-?[\d,]+\.?\d*\)?\s*$`)
)

// Recognizer locates candidate transaction fields in raw content chunks.
// It never rejects a chunk; fields it cannot find stay empty with zero
// confidence.
type Recognizer struct {
	logger logger.Logger
}

func NewRecognizer(log logger.Logger) *Recognizer {
	return &Recognizer{logger: log}
}

// Recognize produces one candidate set per chunk, in chunk order.
func (r *Recognizer) Recognize(chunks []models.RawContentChunk) []models.CandidateFields {
	candidates := make([]models.CandidateFields, 0, len(chunks))
	for i := range chunks {
		candidates = append(candidates, r.recognizeChunk(&chunks[i]))
	}
	return candidates
}

func (r *Recognizer) recognizeChunk(chunk *models.RawContentChunk) models.CandidateFields {
	c := models.CandidateFields{
		Chunk:      chunk,
		Confidence: map[string]float64{},
	}

	if record, ok := parseRecord(chunk.Text); ok {
		r.recognizeRecord(&c, record)
	} else {
		r.recognizeText(&c, chunk.Text)
	}

	c.Confidence["date"] = found(c.DateStr)
	c.Confidence["description"] = found(c.DescriptionStr)
	c.Confidence["amount"] = found(c.AmountStr, c.CreditStr, c.DebitStr)
	return c
}

// recognizeRecord pulls fields from a structured row by header alias.
// Separate credit and debit columns are preserved so a four-column
// statement keeps its polarity information.
func (r *Recognizer) recognizeRecord(c *models.CandidateFields, record map[string]string) {
	c.DateStr = lookup(record, dateKeys)
	c.DescriptionStr = lookup(record, descriptionKeys)
	c.AmountStr = lookup(record, amountKeys)
	c.CreditStr = lookup(record, creditKeys)
	c.DebitStr = lookup(record, debitKeys)
	c.Notes = append(c.Notes, "fields matched by column header")
}

// recognizeText scans unstructured text line by line. The first date
// pattern hit wins; labeled credit/debit figures take precedence over a
// generic amount; the description is the first line that is neither a
// bare date nor a bare amount.
func (r *Recognizer) recognizeText(c *models.CandidateFields, text string) {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			c.DateStr = m
			break
		}
	}

	if m := labeledCreditRe.FindStringSubmatch(text); m != nil {
		c.CreditStr = stripCurrency(m[1])
	}
	if m := labeledDebitRe.FindStringSubmatch(text); m != nil {
		c.DebitStr = stripCurrency(m[1])
	}
	if c.CreditStr == "" && c.DebitStr == "" {
		if m := amountRe.FindString(text); m != "" {
			c.AmountStr = stripCurrency(m)
		}
	}

	c.DescriptionStr = pickDescription(text)
}

// parseRecord attempts to read a chunk as a JSON object of header to
// cell value, the shape emitted by the delimited-text decoder.
func parseRecord(text string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var record map[string]string
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, false
	}
	return record, true
}

func lookup(record map[string]string, keys []string) string {
	normalized := make(map[string]string, len(record))
	for k, v := range record {
		normalized[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	for _, key := range keys {
		if v, ok := normalized[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

func pickDescription(text string) string {
	var firstNonEmpty string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if firstNonEmpty == "" {
			firstNonEmpty = line
		}
		if len(line) <= 3 || pureDateRe.MatchString(line) || pureAmountRe.MatchString(line) {
			continue
		}
		return line
	}
	return firstNonEmpty
}

func stripCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range currencyRunes {
		s = strings.ReplaceAll(s, string(r), "")
	}
	return strings.TrimSpace(s)
}

func found(candidates ...string) float64 {
	for _, c := range candidates {
		if c != "" {
			return ConfidenceFound
		}
	}
	return ConfidenceMissing
}
