package receipt

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/internal/normalize"
	"github.com/finproc/statement-processor/pkg/logger"
)

// Total labels as they come out of OCR, common misreads included.
var totalLabels = []string{
	"grand total",
	"total due",
	"amount due",
	"balance due",
	"total amount",
	"total",
	"totai",
	"totol",
	"t0tal",
	"tota1",
	"amount",
}

var currencySymbols = map[string]string{
	"$": "USD",
	"£": "GBP",
	"€": "EUR",
	"¥": "JPY",
}

var (
	totalRes []*regexp.Regexp

	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`),
		regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	}

	// "2 x Latte  9.00" style line with quantity.
	qtyItemRe = regexp.MustCompile(`^(\d{1,3})\s*[xX@]\s*(.{2,40}?)\s+[($£€¥]?\s*(\d{1,5}[.,]\d{2})\)?$`)
	// "Latte  4.50" style line.
	plainItemRe = regexp.MustCompile(`^(.{2,40}?)\s{2,}[($£€¥]?\s*(\d{1,5}[.,]\d{2})\)?$`)

	moneyRe     = regexp.MustCompile(`[($£€¥]?\s*(\d{1,6}(?:[.,]\d{3})*[.,]\d{2})\)?`)
	symbolRe    = regexp.MustCompile(`[$£€¥]`)
	digitHeavy  = regexp.MustCompile(`\d{5,}`)
	phoneLikeRe = regexp.MustCompile(`^[\d\s()\-+.]+$`)
)

func init() {
	totalRes = make([]*regexp.Regexp, 0, len(totalLabels))
	for _, label := range totalLabels {
		totalRes = append(totalRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(label)+`\b[:\s]*[($£€¥]?\s*(\d{1,6}(?:[.,]\d{3})*[.,]\d{2})\)?`))
	}
}

// Structurer extracts vendor, date, total, currency and line items from
// OCR text of a single receipt. Vendor, date and total are mandatory; a
// receipt missing any of them does not structure and Structure returns
// nil.
type Structurer struct {
	logger logger.Logger
}

func NewStructurer(log logger.Logger) *Structurer {
	return &Structurer{logger: log}
}

func (s *Structurer) Structure(text string) *models.ReceiptData {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	vendor := findVendor(lines)
	date := findDate(text)
	total, totalLine := findTotal(lines)

	if vendor == "" || date == nil || total == nil {
		s.logger.Warn("receipt did not structure",
			logger.Bool("vendor_found", vendor != ""),
			logger.Bool("date_found", date != nil),
			logger.Bool("total_found", total != nil),
		)
		return nil
	}

	return &models.ReceiptData{
		ReceiptID:       uuid.New().String(),
		VendorName:      vendor,
		TransactionDate: *date,
		TotalAmount:     *total,
		Currency:        findCurrency(text),
		LineItems:       findLineItems(lines, totalLine),
		RawText:         text,
	}
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// findVendor takes the first plausible of the top five lines. Store
// names sit at the top of a receipt; addresses, phone numbers and long
// digit runs do not qualify.
func findVendor(lines []string) string {
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if len(line) < 3 || len(line) > 40 {
			continue
		}
		if phoneLikeRe.MatchString(line) || digitHeavy.MatchString(line) {
			continue
		}
		if moneyRe.MatchString(line) || dateLike(line) {
			continue
		}
		return line
	}
	return ""
}

func dateLike(line string) bool {
	for _, re := range dateRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func findDate(text string) *time.Time {
	for _, re := range dateRes {
		if m := re.FindString(text); m != "" {
			if t := normalize.ParseDate(m); t != nil {
				return t
			}
		}
	}
	return nil
}

// findTotal scans bottom-up so the final total beats any subtotal that
// shares a label. Returns the line index the total came from, or -1.
func findTotal(lines []string) (*decimal.Decimal, int) {
	for _, re := range totalRes {
		for i := len(lines) - 1; i >= 0; i-- {
			if m := re.FindStringSubmatch(lines[i]); m != nil {
				if v, ok := parseMoney(m[1]); ok {
					return &v, i
				}
			}
		}
	}
	return nil, -1
}

func findCurrency(text string) string {
	if m := symbolRe.FindString(text); m != "" {
		if code, ok := currencySymbols[m]; ok {
			return code
		}
	}
	return models.DefaultCurrency
}

// findLineItems collects item lines above the total line.
func findLineItems(lines []string, totalLine int) []models.LineItem {
	end := len(lines)
	if totalLine >= 0 {
		end = totalLine
	}

	var items []models.LineItem
	for _, line := range lines[:end] {
		if m := qtyItemRe.FindStringSubmatch(line); m != nil {
			if price, ok := parseMoney(m[3]); ok {
				items = append(items, models.LineItem{
					Item:  strings.TrimSpace(m[1] + " x " + m[2]),
					Price: price,
				})
			}
			continue
		}
		if m := plainItemRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if isTotalLabel(name) {
				continue
			}
			if price, ok := parseMoney(m[2]); ok {
				items = append(items, models.LineItem{Item: name, Price: price})
			}
		}
	}
	return items
}

func isTotalLabel(name string) bool {
	lowered := strings.ToLower(name)
	for _, label := range totalLabels {
		if strings.Contains(lowered, label) {
			return true
		}
	}
	return strings.Contains(lowered, "subtotal") ||
		strings.Contains(lowered, "tax") ||
		strings.Contains(lowered, "tip") ||
		strings.Contains(lowered, "change") ||
		strings.Contains(lowered, "cash") ||
		strings.Contains(lowered, "card")
}

func parseMoney(s string) (decimal.Decimal, bool) {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		// Decimal comma: 1.234,56 or 9,00.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
