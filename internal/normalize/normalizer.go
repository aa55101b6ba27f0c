package normalize

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/pkg/logger"
)

// Normalizer turns candidate fields into canonical transactions. Records
// missing a mandatory field are dropped with a note; per-record issues
// never raise.
type Normalizer struct {
	logger logger.Logger
}

func NewNormalizer(log logger.Logger) *Normalizer {
	return &Normalizer{logger: log}
}

// Normalize converts candidates into canonical transactions in input
// order. The second return value lists why individual candidates were
// dropped; it belongs on the job, not on any transaction.
func (n *Normalizer) Normalize(candidates []models.CandidateFields) ([]models.CanonicalTransaction, []string) {
	transactions := make([]models.CanonicalTransaction, 0, len(candidates))
	var gaps []string

	for i, c := range candidates {
		var notes []string

		parsedDate := ParseDate(c.DateStr)
		if parsedDate == nil {
			gaps = append(gaps, fmt.Sprintf("record %d: no valid date (candidate %q)", i+1, c.DateStr))
			continue
		}
		notes = append(notes, fmt.Sprintf("date parsed from %q", c.DateStr))

		amount, polarity, ok := ParseAmount(c.AmountStr, c.CreditStr, c.DebitStr)
		if !ok {
			gaps = append(gaps, fmt.Sprintf("record %d: no valid amount", i+1))
			continue
		}
		notes = append(notes, "amount parsed from "+firstNonEmpty(c.CreditStr, c.DebitStr, c.AmountStr))

		description := CleanDescription(c.DescriptionStr)
		if description == models.DefaultDescription && c.DescriptionStr != "" {
			notes = append(notes, "description discarded during cleaning, placeholder used")
		}

		sourceRef := ""
		if c.Chunk != nil {
			sourceRef = c.Chunk.SourceFileName
		}

		transactions = append(transactions, models.NewCanonicalTransaction(
			uuid.New().String(), *parsedDate, description, amount, polarity, sourceRef, notes,
		))
	}

	return transactions, gaps
}

// NormalizeReceipt converts structured receipt data into a single debit
// transaction. Receipts represent outflow, so the amount is the negated
// total. Returns nil when the receipt is nil or carries no total.
func (n *Normalizer) NormalizeReceipt(r *models.ReceiptData) *models.CanonicalTransaction {
	if r == nil || r.TotalAmount.IsZero() {
		return nil
	}

	description := r.VendorName
	if len(r.LineItems) > 0 {
		description = fmt.Sprintf("%s - %s", r.VendorName, r.LineItems[0].Item)
	}

	notes := []string{
		fmt.Sprintf("receipt total %s %s", r.TotalAmount.StringFixed(2), r.Currency),
	}

	tx := models.NewCanonicalTransaction(
		r.ReceiptID, r.TransactionDate, description, r.TotalAmount, models.PolarityDebit, r.ReceiptID, notes,
	)
	return &tx
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return fmt.Sprintf("%q", v)
		}
	}
	return `""`
}
