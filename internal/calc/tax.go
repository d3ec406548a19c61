package calc

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Slab is one income bracket. UpTo is the cumulative upper bound of the
// bracket; zero or +Inf marks the open-ended top slab. Rate is a fraction
// (0.05 for 5%).
type Slab struct {
	UpTo float64 `json:"up_to"  mapstructure:"up_to"  yaml:"up_to"`
	Rate float64 `json:"rate"   mapstructure:"rate"   yaml:"rate"`
}

// Unbounded reports whether the slab has no upper limit.
func (s Slab) Unbounded() bool {
	return s.UpTo == 0 || math.IsInf(s.UpTo, 1)
}

// SlabTable is an ascending list of slabs whose last entry is unbounded.
type SlabTable []Slab

// DefaultSlabs returns the slab schedule used by the tax estimator card:
// nil up to ₹3L, then 5/10/15/20% per ₹3L band, and 30% above ₹15L.
func DefaultSlabs() SlabTable {
	return SlabTable{
		{UpTo: 300000, Rate: 0},
		{UpTo: 600000, Rate: 0.05},
		{UpTo: 900000, Rate: 0.10},
		{UpTo: 1200000, Rate: 0.15},
		{UpTo: 1500000, Rate: 0.20},
		{UpTo: 0, Rate: 0.30},
	}
}

// Validate checks that bounds ascend, rates are within [0, 1], and only the
// last slab is unbounded.
func (t SlabTable) Validate() error {
	if len(t) == 0 {
		return invalid("slabs", "table is empty")
	}
	prev := 0.0
	for i, s := range t {
		if math.IsNaN(s.Rate) || s.Rate < 0 || s.Rate > 1 {
			return invalid("slabs", fmt.Sprintf("slab %d rate %v outside [0, 1]", i, s.Rate))
		}
		last := i == len(t)-1
		if s.Unbounded() {
			if !last {
				return invalid("slabs", fmt.Sprintf("slab %d is unbounded but not last", i))
			}
			continue
		}
		if last {
			return invalid("slabs", "last slab must be unbounded")
		}
		if math.IsNaN(s.UpTo) || s.UpTo <= prev {
			return invalid("slabs", fmt.Sprintf("slab %d bound %v does not exceed %v", i, s.UpTo, prev))
		}
		prev = s.UpTo
	}
	return nil
}

// TaxParameters are the inputs of the tax estimator.
type TaxParameters struct {
	AnnualIncome float64 `json:"annual_income"`
	Deductions   float64 `json:"deductions"`
}

// SlabTax is the tax charged inside one slab.
type SlabTax struct {
	From    float64 `json:"from"`
	To      float64 `json:"to"`
	Rate    float64 `json:"rate"`
	Taxable float64 `json:"taxable"`
	Tax     float64 `json:"tax"`
}

// TaxResult is the estimated liability.
type TaxResult struct {
	TaxableIncome        float64   `json:"taxable_income"`
	TaxDue               float64   `json:"tax_due"`
	EffectiveRatePercent float64   `json:"effective_rate_percent"`
	Breakdown            []SlabTax `json:"breakdown,omitempty"`
}

// Validate checks the tax parameters.
func (p TaxParameters) Validate() error {
	if err := requireNonNegative("annual_income", p.AnnualIncome); err != nil {
		return err
	}
	return requireNonNegative("deductions", p.Deductions)
}

// EstimateTax applies the slab table to income net of deductions. Each slab
// taxes only the part of income inside its span; walking stops once the
// taxable amount is used up.
func EstimateTax(p TaxParameters, slabs SlabTable) (TaxResult, error) {
	if err := p.Validate(); err != nil {
		return TaxResult{}, err
	}
	if err := slabs.Validate(); err != nil {
		return TaxResult{}, err
	}

	taxable := decimal.Max(decimal.Zero,
		decimal.NewFromFloat(p.AnnualIncome).Sub(decimal.NewFromFloat(p.Deductions)))

	remaining := taxable
	lower := decimal.Zero
	tax := decimal.Zero
	var breakdown []SlabTax

	for _, s := range slabs {
		if !remaining.IsPositive() {
			break
		}
		portion := remaining
		if !s.Unbounded() {
			upper := decimal.NewFromFloat(s.UpTo)
			portion = decimal.Min(remaining, upper.Sub(lower))
		}
		slabTax := portion.Mul(decimal.NewFromFloat(s.Rate))
		tax = tax.Add(slabTax)
		remaining = remaining.Sub(portion)

		from, _ := lower.Float64()
		amt, _ := portion.Float64()
		st, _ := slabTax.Float64()
		breakdown = append(breakdown, SlabTax{
			From:    from,
			To:      from + amt,
			Rate:    s.Rate,
			Taxable: amt,
			Tax:     st,
		})

		if !s.Unbounded() {
			lower = decimal.NewFromFloat(s.UpTo)
		}
	}

	res := TaxResult{Breakdown: breakdown}
	res.TaxableIncome, _ = taxable.Float64()
	res.TaxDue, _ = tax.Float64()
	if taxable.IsPositive() {
		res.EffectiveRatePercent, _ = tax.Div(taxable).Mul(decimal.NewFromInt(100)).Float64()
	}
	return res, nil
}
