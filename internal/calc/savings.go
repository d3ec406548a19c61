package calc

import "math"

// projectedAnnualGrowth is the flat return used by the savings card's
// one-year projection.
const projectedAnnualGrowth = 1.07

// SavingsSnapshot is the state of a savings goal.
type SavingsSnapshot struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
	Monthly float64 `json:"monthly"`
}

// SavingsProgress summarises how far along a savings goal is.
type SavingsProgress struct {
	ProgressPercent   int     `json:"progress_percent"`
	MonthsRemaining   int     `json:"months_remaining"`
	OneYearProjection float64 `json:"one_year_projection"`
}

// TrackSavings reports progress towards the goal, the months still needed at
// the current contribution (ignoring growth), and the balance a year out.
func TrackSavings(s SavingsSnapshot) (SavingsProgress, error) {
	if err := requireNonNegative("current", s.Current); err != nil {
		return SavingsProgress{}, err
	}
	if err := requirePositive("goal", s.Goal); err != nil {
		return SavingsProgress{}, err
	}
	if err := requirePositive("monthly", s.Monthly); err != nil {
		return SavingsProgress{}, err
	}

	progress := int(math.Min(100, math.Round(s.Current/s.Goal*100)))
	remaining := int(math.Max(0, math.Ceil((s.Goal-s.Current)/s.Monthly)))

	return SavingsProgress{
		ProgressPercent:   progress,
		MonthsRemaining:   remaining,
		OneYearProjection: math.Round((s.Current + s.Monthly*12) * projectedAnnualGrowth),
	}, nil
}
