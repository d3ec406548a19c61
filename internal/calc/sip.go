package calc

import "math"

// PaymentTiming says when a recurring contribution lands in each period.
type PaymentTiming string

const (
	// TimingStart is an annuity-due: money is invested at the start of
	// the month and earns that month's return. This is the default.
	TimingStart PaymentTiming = "start"
	// TimingEnd is an ordinary annuity: money is invested at month end.
	TimingEnd PaymentTiming = "end"
)

// ContributionPlan describes a systematic investment plan.
type ContributionPlan struct {
	MonthlyAmount     float64       `json:"monthly_amount"`
	AnnualRatePercent float64       `json:"annual_rate_percent"`
	TermYears         float64       `json:"term_years"`
	Timing            PaymentTiming `json:"timing,omitempty"`
}

// GrowthResult is the projected value of a contribution plan.
type GrowthResult struct {
	Months           int     `json:"months"`
	FutureValue      float64 `json:"future_value"`
	TotalContributed float64 `json:"total_contributed"`
	TotalReturns     float64 `json:"total_returns"`
}

// Months returns the number of monthly contributions in the plan.
func (p ContributionPlan) Months() int {
	return int(math.Round(p.TermYears * 12))
}

// Validate checks the plan parameters.
func (p ContributionPlan) Validate() error {
	if err := requirePositive("monthly_amount", p.MonthlyAmount); err != nil {
		return err
	}
	if err := requireNonNegative("annual_rate_percent", p.AnnualRatePercent); err != nil {
		return err
	}
	if err := requirePositive("term_years", p.TermYears); err != nil {
		return err
	}
	if p.Months() < 1 {
		return invalid("term_years", "must cover at least one month")
	}
	switch p.Timing {
	case "", TimingStart, TimingEnd:
	default:
		return invalid("timing", `must be "start" or "end"`)
	}
	return nil
}

// Grow projects the future value of a fixed monthly contribution under
// monthly compounding.
func Grow(p ContributionPlan) (GrowthResult, error) {
	if err := p.Validate(); err != nil {
		return GrowthResult{}, err
	}

	months := p.Months()
	m := float64(months)
	r := monthlyRate(p.AnnualRatePercent)
	contributed := p.MonthlyAmount * m

	fv := contributed
	if r > 0 {
		fv = p.MonthlyAmount * ((math.Pow(1+r, m) - 1) / r)
		if p.Timing != TimingEnd {
			fv *= 1 + r
		}
	}

	return GrowthResult{
		Months:           months,
		FutureValue:      fv,
		TotalContributed: contributed,
		TotalReturns:     fv - contributed,
	}, nil
}
