package serialize

import (
	"encoding/csv"
	"strings"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/internal/normalize"
)

var (
	threeColumnHeader = []string{"Date", "Description", "Amount"}
	fourColumnHeader  = []string{"Date", "Description", "Credit", "Debit"}
)

// Serialize renders transactions as import-ready CSV. The three-column
// layout keeps signed amounts; the four-column layout splits absolute
// values into credit and debit columns, leaving the other one empty.
// Options are validated before any work happens, and an empty
// transaction list yields an empty string, not a lone header row.
func Serialize(transactions []models.CanonicalTransaction, layout models.Layout, dateFormat models.DateFormat) (string, error) {
	if !layout.Valid() {
		return "", &models.SerializationError{Reason: "unknown layout " + string(layout)}
	}
	if !dateFormat.Valid() {
		return "", &models.SerializationError{Reason: "unknown date format " + string(dateFormat)}
	}
	if len(transactions) == 0 {
		return "", nil
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)

	header := threeColumnHeader
	if layout == models.LayoutFourColumn {
		header = fourColumnHeader
	}
	if err := w.Write(header); err != nil {
		return "", &models.SerializationError{Reason: err.Error()}
	}

	for _, tx := range transactions {
		date, err := normalize.FormatDate(tx.Date, dateFormat)
		if err != nil {
			return "", &models.SerializationError{Reason: err.Error()}
		}

		var row []string
		if layout == models.LayoutFourColumn {
			credit, debit := "", ""
			if tx.Polarity == models.PolarityCredit {
				credit = tx.Amount.Abs().StringFixed(2)
			} else {
				debit = tx.Amount.Abs().StringFixed(2)
			}
			row = []string{date, tx.Description, credit, debit}
		} else {
			row = []string{date, tx.Description, tx.Amount.StringFixed(2)}
		}

		if err := w.Write(row); err != nil {
			return "", &models.SerializationError{Reason: err.Error()}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", &models.SerializationError{Reason: err.Error()}
	}
	return buf.String(), nil
}
