package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectGoal_LogFormula(t *testing.T) {
	res, err := ProjectGoal(GoalParameters{TargetAmount: 100000, MonthlyContribution: 5000, AnnualRatePercent: 6})
	require.NoError(t, err)

	// ln(100000*0.005/5000 + 1) / ln(1.005) ≈ 19.11 months ≈ 1.59 years
	assert.Equal(t, 20, res.MonthsToGoal)
	assert.Equal(t, 1.6, res.YearsToGoal)
}

func TestProjectGoal_ZeroRate(t *testing.T) {
	res, err := ProjectGoal(GoalParameters{TargetAmount: 100000, MonthlyContribution: 3000})
	require.NoError(t, err)

	// 33.33 months
	assert.Equal(t, 34, res.MonthsToGoal)
	assert.Equal(t, 2.8, res.YearsToGoal)
}

func TestProjectGoal_YearsFromFractionalMonths(t *testing.T) {
	cases := []struct {
		name   string
		params GoalParameters
		months int
		years  float64
	}{
		// 18/12 = 1.5 exactly; ceiled months would also give 1.5
		{"zero rate exact", GoalParameters{TargetAmount: 90000, MonthlyContribution: 5000}, 18, 1.5},
		// 18.2 months: ceil gives 19 (1.6 years) but the fraction reads 1.5
		{"zero rate fraction", GoalParameters{TargetAmount: 91000, MonthlyContribution: 5000}, 19, 1.5},
		{"log formula", GoalParameters{TargetAmount: 100000, MonthlyContribution: 5000, AnnualRatePercent: 6}, 20, 1.6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ProjectGoal(tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.months, res.MonthsToGoal)
			assert.Equal(t, tc.years, res.YearsToGoal)
		})
	}
}

func TestProjectGoal_AlreadyMet(t *testing.T) {
	for _, target := range []float64{1, 4999, 5000} {
		res, err := ProjectGoal(GoalParameters{TargetAmount: target, MonthlyContribution: 5000, AnnualRatePercent: 8})
		require.NoError(t, err)
		assert.Equal(t, 1, res.MonthsToGoal, "target %v", target)
		assert.LessOrEqual(t, res.YearsToGoal, 0.1)
		assert.GreaterOrEqual(t, res.YearsToGoal, 0.0)
	}
}

func TestProjectGoal_RoundTripWithGrowth(t *testing.T) {
	for _, rate := range []float64{0, 4, 12} {
		for _, years := range []float64{1, 5, 10} {
			plan := ContributionPlan{MonthlyAmount: 5000, AnnualRatePercent: rate, TermYears: years}

			due, err := Grow(plan)
			require.NoError(t, err)
			res, err := ProjectGoal(GoalParameters{
				TargetAmount:        due.FutureValue,
				MonthlyContribution: plan.MonthlyAmount,
				AnnualRatePercent:   rate,
			})
			require.NoError(t, err)
			assert.InDelta(t, due.Months, res.MonthsToGoal, 1, "annuity-due rate=%v years=%v", rate, years)

			plan.Timing = TimingEnd
			ord, err := Grow(plan)
			require.NoError(t, err)
			res, err = ProjectGoal(GoalParameters{
				TargetAmount:        ord.FutureValue,
				MonthlyContribution: plan.MonthlyAmount,
				AnnualRatePercent:   rate,
			})
			require.NoError(t, err)
			assert.Equal(t, ord.Months, res.MonthsToGoal, "ordinary rate=%v years=%v", rate, years)
		}
	}
}

func TestProjectGoal_RejectsInvalidInput(t *testing.T) {
	bad := []GoalParameters{
		{TargetAmount: 0, MonthlyContribution: 100, AnnualRatePercent: 5},
		{TargetAmount: 1000, MonthlyContribution: 0, AnnualRatePercent: 5},
		{TargetAmount: 1000, MonthlyContribution: -10, AnnualRatePercent: 5},
		{TargetAmount: 1000, MonthlyContribution: 100, AnnualRatePercent: -5},
	}
	for _, p := range bad {
		_, err := ProjectGoal(p)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", p)
	}
}
