package calc

import "math"

// GoalParameters describes a savings target reached by monthly contributions.
type GoalParameters struct {
	TargetAmount        float64 `json:"target_amount"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	AnnualRatePercent   float64 `json:"annual_rate_percent"`
}

// GoalResult is the time needed to reach a goal.
type GoalResult struct {
	MonthsToGoal int     `json:"months_to_goal"`
	YearsToGoal  float64 `json:"years_to_goal"`
}

// Validate checks the goal parameters.
func (p GoalParameters) Validate() error {
	if err := requirePositive("target_amount", p.TargetAmount); err != nil {
		return err
	}
	if err := requirePositive("monthly_contribution", p.MonthlyContribution); err != nil {
		return err
	}
	return requireNonNegative("annual_rate_percent", p.AnnualRatePercent)
}

// ProjectGoal inverts the ordinary-annuity future value formula to find how
// many whole months of contributions reach the target. Years are taken from
// the fractional month count, so 19.1 months reads as 1.6 years while
// MonthsToGoal rounds up to 20.
func ProjectGoal(p GoalParameters) (GoalResult, error) {
	if err := p.Validate(); err != nil {
		return GoalResult{}, err
	}

	r := monthlyRate(p.AnnualRatePercent)

	var months float64
	if r == 0 {
		months = p.TargetAmount / p.MonthlyContribution
	} else {
		months = math.Log(p.TargetAmount*r/p.MonthlyContribution+1) / math.Log(1+r)
	}

	// 1e-9 absorbs float noise so an exact multiple does not round up a month.
	whole := int(math.Ceil(months - 1e-9))
	if whole < 1 {
		whole = 1
	}

	return GoalResult{
		MonthsToGoal: whole,
		YearsToGoal:  math.Round(months/12*10) / 10,
	}, nil
}
