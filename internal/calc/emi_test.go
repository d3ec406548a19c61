package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmortize_HomeCardDefaults(t *testing.T) {
	res, err := Amortize(LoanParameters{Principal: 500000, AnnualRatePercent: 10.5, TermMonths: 36})
	require.NoError(t, err)

	assert.InDelta(t, 16251.22, res.MonthlyPayment, 0.01)
	assert.InDelta(t, 585043.98, res.TotalPayment, 0.05)
	assert.InDelta(t, 85043.98, res.TotalInterest, 0.05)
}

func TestAmortize_ZeroRate(t *testing.T) {
	res, err := Amortize(LoanParameters{Principal: 120000, AnnualRatePercent: 0, TermMonths: 12})
	require.NoError(t, err)

	assert.Equal(t, 10000.0, res.MonthlyPayment)
	assert.Equal(t, 120000.0, res.TotalPayment)
	assert.Equal(t, 0.0, res.TotalInterest)
}

func TestAmortize_Properties(t *testing.T) {
	principals := []float64{1000, 250000, 500000, 7500000}
	rates := []float64{0, 0.5, 8.5, 10.5, 24}
	terms := []int{1, 12, 36, 60, 240}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range terms {
				res, err := Amortize(LoanParameters{Principal: p, AnnualRatePercent: r, TermMonths: n})
				require.NoError(t, err)

				assert.GreaterOrEqual(t, res.TotalPayment, p-1e-6)
				assert.InDelta(t, res.TotalPayment-p, res.TotalInterest, 1e-6*p)
				if r == 0 {
					assert.Zero(t, res.TotalInterest)
				} else {
					assert.Positive(t, res.TotalInterest, "P=%v R=%v N=%v", p, r, n)
				}
			}
		}
	}
}

func TestAmortize_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		in    LoanParameters
		field string
	}{
		{"zero principal", LoanParameters{Principal: 0, AnnualRatePercent: 10, TermMonths: 12}, "principal"},
		{"negative principal", LoanParameters{Principal: -5, AnnualRatePercent: 10, TermMonths: 12}, "principal"},
		{"negative rate", LoanParameters{Principal: 1000, AnnualRatePercent: -1, TermMonths: 12}, "annual_rate_percent"},
		{"NaN rate", LoanParameters{Principal: 1000, AnnualRatePercent: math.NaN(), TermMonths: 12}, "annual_rate_percent"},
		{"zero term", LoanParameters{Principal: 1000, AnnualRatePercent: 10, TermMonths: 0}, "term_months"},
		{"negative term", LoanParameters{Principal: 1000, AnnualRatePercent: 10, TermMonths: -3}, "term_months"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Amortize(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestSchedule_AmortizesToZero(t *testing.T) {
	p := LoanParameters{Principal: 500000, AnnualRatePercent: 10.5, TermMonths: 36}
	rows, err := Schedule(p)
	require.NoError(t, err)
	require.Len(t, rows, 36)

	var principal, interest float64
	for i, row := range rows {
		assert.Equal(t, i+1, row.Month)
		assert.InDelta(t, row.Payment, row.Principal+row.Interest, 1e-6)
		principal += row.Principal
		interest += row.Interest
	}

	assert.Zero(t, rows[35].Balance)
	assert.InDelta(t, 500000, principal, 1e-6)
	assert.InDelta(t, 85043.98, interest, 0.05)
	assert.Greater(t, rows[0].Interest, rows[35].Interest)
}

func TestSchedule_ZeroRate(t *testing.T) {
	rows, err := Schedule(LoanParameters{Principal: 120000, TermMonths: 12})
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, 10000.0, row.Payment)
		assert.Zero(t, row.Interest)
	}
	assert.Zero(t, rows[11].Balance)
}

func TestSchedule_InvalidInput(t *testing.T) {
	_, err := Schedule(LoanParameters{Principal: 1000, TermMonths: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
