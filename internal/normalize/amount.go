package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finproc/statement-processor/internal/models"
)

var (
	creditIndicators = regexp.MustCompile(`(?i)\b(credit|deposit|refund|payment received|cr|incoming|salary|interest|reimbursement)\b`)
	debitIndicators  = regexp.MustCompile(`(?i)\b(debit|payment|withdrawal|purchase|dr|outgoing|fee|charge|bill|invoice)\b`)

	nonNumeric = regexp.MustCompile(`[^\d.,\-]`)
	hasDigit   = regexp.MustCompile(`\d`)
)

// ParseAmount derives a signed amount and polarity from up to three
// candidate strings. A parsed credit string wins over everything else,
// then a debit string, then the generic amount string. On the generic
// path a minus sign, parentheses or a debit marker word yield debit; a
// credit marker word yields credit; an unsigned bare amount defaults to
// debit, since a single-amount statement line is conventionally an
// expense. The returned bool is false when nothing parsed.
func ParseAmount(amountStr, creditStr, debitStr string) (decimal.Decimal, models.Polarity, bool) {
	if creditStr != "" {
		if v, ok := extractNumeric(creditStr); ok && !v.IsZero() {
			return v.Abs(), models.PolarityCredit, true
		}
	}

	if debitStr != "" {
		if v, ok := extractNumeric(debitStr); ok && !v.IsZero() {
			return v.Abs().Neg(), models.PolarityDebit, true
		}
	}

	if amountStr == "" {
		return decimal.Zero, "", false
	}

	v, ok := extractNumeric(amountStr)
	if !ok {
		return decimal.Zero, "", false
	}

	switch {
	case v.IsNegative() || debitIndicators.MatchString(amountStr):
		return v.Abs().Neg(), models.PolarityDebit, true
	case creditIndicators.MatchString(amountStr):
		return v.Abs(), models.PolarityCredit, true
	default:
		return v.Abs().Neg(), models.PolarityDebit, true
	}
}

// extractNumeric pulls a numeric value out of a string, handling currency
// symbols, thousands separators in both US and European conventions, and
// parenthesized negatives. Text with no digits or more than one decimal
// point does not parse.
func extractNumeric(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := strings.Contains(s, "(") && strings.Contains(s, ")")

	cleaned := nonNumeric.ReplaceAllString(s, "")
	if !hasDigit.MatchString(cleaned) {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// European format: 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// US format: 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if len(cleaned)-lastComma <= 3 {
			// Likely a decimal comma: 1,23
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	if strings.Count(cleaned, ".") > 1 {
		return decimal.Zero, false
	}

	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}

	if negative {
		v = v.Abs().Neg()
	}
	return v, true
}
