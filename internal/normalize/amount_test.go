package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finproc/statement-processor/internal/models"
)

func TestParseAmountGeneric(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAmount string
		wantPol    models.Polarity
	}{
		{"unsigned defaults to debit", "45.00", "-45", models.PolarityDebit},
		{"explicit negative", "-45.00", "-45", models.PolarityDebit},
		{"parenthesized negative", "(45.00)", "-45", models.PolarityDebit},
		{"currency symbol", "$1,234.56", "-1234.56", models.PolarityDebit},
		{"euro separators", "1.234,56", "-1234.56", models.PolarityDebit},
		{"decimal comma", "9,50", "-9.5", models.PolarityDebit},
		{"credit keyword", "deposit 500.00", "500", models.PolarityCredit},
		{"refund keyword", "REFUND $12.99", "12.99", models.PolarityCredit},
		{"debit keyword", "purchase 20.00", "-20", models.PolarityDebit},
		{"debit keyword wins over credit", "debit payment received 10.00", "-10", models.PolarityDebit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, pol, ok := ParseAmount(tt.input, "", "")
			require.True(t, ok)
			assert.Equal(t, tt.wantAmount, amount.String())
			assert.Equal(t, tt.wantPol, pol)
		})
	}
}

func TestParseAmountSeparateColumns(t *testing.T) {
	amount, pol, ok := ParseAmount("", "250.00", "")
	require.True(t, ok)
	assert.Equal(t, "250", amount.String())
	assert.Equal(t, models.PolarityCredit, pol)

	amount, pol, ok = ParseAmount("", "", "99.95")
	require.True(t, ok)
	assert.Equal(t, "-99.95", amount.String())
	assert.Equal(t, models.PolarityDebit, pol)
}

func TestParseAmountCreditColumnWins(t *testing.T) {
	amount, pol, ok := ParseAmount("1.00", "250.00", "99.95")
	require.True(t, ok)
	assert.Equal(t, "250", amount.String())
	assert.Equal(t, models.PolarityCredit, pol)
}

func TestParseAmountZeroCreditFallsThrough(t *testing.T) {
	amount, pol, ok := ParseAmount("", "0.00", "99.95")
	require.True(t, ok)
	assert.Equal(t, "-99.95", amount.String())
	assert.Equal(t, models.PolarityDebit, pol)
}

func TestParseAmountUnparseable(t *testing.T) {
	for _, input := range []string{"", "n/a", "pending", "1.2.3"} {
		_, _, ok := ParseAmount(input, "", "")
		assert.False(t, ok, "input %q", input)
	}
}

func TestSignAgreesWithPolarity(t *testing.T) {
	amount, pol, ok := ParseAmount("credit 75.50", "", "")
	require.True(t, ok)
	assert.Equal(t, models.PolarityCredit, pol)
	assert.False(t, amount.IsNegative())

	amount, pol, ok = ParseAmount("75.50", "", "")
	require.True(t, ok)
	assert.Equal(t, models.PolarityDebit, pol)
	assert.True(t, amount.IsNegative())
}
