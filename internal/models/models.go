package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind identifies the format a raw chunk was extracted from.
type SourceKind string

const (
	SourceDelimitedText SourceKind = "csv"
	SourcePagedDocument SourceKind = "pdf"
	SourceWordDocument  SourceKind = "docx"
	SourceImage         SourceKind = "image"
)

// RawContentChunk is one unit of raw text extracted from a source file.
// Chunks are immutable once produced and are discarded when the pipeline
// run completes; they are never persisted.
type RawContentChunk struct {
	Text           string     `json:"text"`
	SourceFileName string     `json:"sourceFileName"`
	SourceKind     SourceKind `json:"sourceKind"`
	// PageIndex is 1-based and set only for paged sources.
	PageIndex   int       `json:"pageIndex,omitempty"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// CandidateFields holds the per-chunk extraction result produced by the
// recognizer. Candidate strings are empty when no pattern matched.
type CandidateFields struct {
	Chunk          *RawContentChunk   `json:"-"`
	DateStr        string             `json:"dateStr,omitempty"`
	DescriptionStr string             `json:"descriptionStr,omitempty"`
	AmountStr      string             `json:"amountStr,omitempty"`
	CreditStr      string             `json:"creditStr,omitempty"`
	DebitStr       string             `json:"debitStr,omitempty"`
	Confidence     map[string]float64 `json:"confidence"`
	Notes          []string           `json:"notes,omitempty"`
}

// Polarity marks a transaction as an inflow (credit) or outflow (debit),
// independent of how a given output layout represents the sign.
type Polarity string

const (
	PolarityCredit Polarity = "Credit"
	PolarityDebit  Polarity = "Debit"
)

// DefaultDescription substitutes for a description that is empty after
// cleaning. Transactions never carry an empty description.
const DefaultDescription = "Unknown Transaction"

// CanonicalTransaction is the validated record eligible for output. It
// exists only when date, amount and polarity were all derived.
type CanonicalTransaction struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Polarity        Polarity        `json:"polarity"`
	SourceReference string          `json:"sourceReference"`
	Notes           []string        `json:"notes,omitempty"`
}

// NewCanonicalTransaction builds a transaction, forcing the sign of amount
// to agree with polarity: credits are positive, debits negative.
func NewCanonicalTransaction(id string, date time.Time, description string, amount decimal.Decimal, polarity Polarity, sourceRef string, notes []string) CanonicalTransaction {
	if description == "" {
		description = DefaultDescription
	}
	switch polarity {
	case PolarityCredit:
		amount = amount.Abs()
	case PolarityDebit:
		amount = amount.Abs().Neg()
	}
	return CanonicalTransaction{
		ID:              id,
		Date:            date,
		Description:     description,
		Amount:          amount,
		Polarity:        polarity,
		SourceReference: sourceRef,
		Notes:           notes,
	}
}

// DefaultCurrency is used when no currency symbol or code is found on a
// receipt.
const DefaultCurrency = "USD"

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Item  string          `json:"item"`
	Price decimal.Decimal `json:"price"`
}

// ReceiptData is the structured form of a scanned receipt. VendorName,
// TransactionDate and TotalAmount are all required; a receipt missing any
// of them is dropped, never partially emitted.
type ReceiptData struct {
	ReceiptID       string          `json:"receiptId"`
	VendorName      string          `json:"vendorName"`
	TransactionDate time.Time       `json:"transactionDate"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Currency        string          `json:"currency"`
	LineItems       []LineItem      `json:"lineItems,omitempty"`
	// RawText retains the full OCR output for audit.
	RawText string `json:"rawText"`
}

// Layout selects one of the two fixed delimited output schemes.
type Layout string

const (
	LayoutThreeColumn Layout = "3-column"
	LayoutFourColumn  Layout = "4-column"
)

// Valid reports whether the layout is one of the supported schemes.
func (l Layout) Valid() bool {
	return l == LayoutThreeColumn || l == LayoutFourColumn
}

// DateFormat selects one of the two supported date render tokens.
type DateFormat string

const (
	DateFormatMDY DateFormat = "MM/DD/YYYY"
	DateFormatDMY DateFormat = "DD/MM/YYYY"
)

// Valid reports whether the format is one of the supported tokens.
func (f DateFormat) Valid() bool {
	return f == DateFormatMDY || f == DateFormatDMY
}
