package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast/internal/models"
	"forecast/internal/services/scenario"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{0.005, "$0.01"},
		{-42.125, "-$42.13"},
		{999.999, "$1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(tt.in))
		})
	}
}

func TestFormatWholeAndPercent(t *testing.T) {
	assert.Equal(t, "$99,500", formatWhole(99499.5))
	assert.Equal(t, "-$1,000", formatWhole(-1000.2))
	assert.Equal(t, "+12.5%", formatPercent(0.125))
	assert.Equal(t, "-30.1%", formatPercent(-0.301))
	assert.Equal(t, "0.0%", formatPercent(0))
	assert.Equal(t, "55.0%", formatProbability(0.55))
	assert.Equal(t, "1234.57", Cents(1234.567).String())
}

func sampleSimulation() *models.SimulationResult {
	series := make([]models.PeriodSummary, 30)
	for i := range series {
		v := float64(1000 * (i + 1))
		series[i] = models.PeriodSummary{Period: i + 1, Mean: v, P10: v * 0.8, P25: v * 0.9, Median: v, P75: v * 1.1, P90: v * 1.2}
	}
	return &models.SimulationResult{
		RunID:      "run-1",
		Seed:       7,
		Iterations: 100,
		Periods:    30,
		Summary:    models.Summary{Mean: 30000, Median: 30000, P10: 24000, P90: 36000, Min: 1, Max: 50000},
		TimeSeries: series,
		Distribution: []models.DistributionBucket{
			{Label: "$0-$25K", Count: 40, Percentage: 40},
			{Label: "$25K+", Low: 25000, High: -1, Count: 60, Percentage: 60},
		},
		MedianMaxDrawdown: 0.05,
		ComputedAt:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestYearly(t *testing.T) {
	got := yearly(sampleSimulation().TimeSeries)
	require.Len(t, got, 3)
	assert.Equal(t, []int{12, 24, 30}, []int{got[0].Period, got[1].Period, got[2].Period})
	assert.Empty(t, yearly(nil))
}

func TestRenderSimulation(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Simulation(&buf, sampleSimulation()))
	out := buf.String()

	assert.Contains(t, out, "100 paths over 30 months (seed 7)")
	assert.Contains(t, out, "$30,000.00")
	assert.Contains(t, out, "$25K+")
	assert.Contains(t, out, " 60.0%")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "$12,000")
	assert.Contains(t, out, "$28,800")
	assert.NotContains(t, out, "$11,000", "only yearly rows are printed")
}

func TestRenderGoal(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Goal(&buf, &models.GoalProbabilityResult{
		TargetAmount:                   100000,
		TargetDate:                     time.Date(2035, 6, 1, 0, 0, 0, 0, time.UTC),
		MonthsRemaining:                120,
		ProbabilityOfSuccess:           0.553,
		MedianOutcome:                  103250.456,
		RecommendedMonthlyContribution: 512.349,
		RecommendationMethod:           models.RecommendationMedianAnnuity,
	}))
	out := buf.String()

	assert.Contains(t, out, "$100,000.00 by Jun 1, 2035 (120 months)")
	assert.Contains(t, out, "55.3%")
	assert.Contains(t, out, "$103,250.46")
	assert.Contains(t, out, "$512.35 per month")
	assert.Contains(t, out, models.RecommendationMedianAnnuity)
}

func TestRenderRetirement(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	depletion := 250.0
	res := &models.RetirementResult{
		Accumulation: models.AccumulationResult{YearsToRetirement: 10, TotalContributions: 60000},
		Withdrawal: models.WithdrawalResult{
			YearsInRetirement:          25,
			ProbabilityOfNotRunningOut: 0.82,
			MedianYearsFundsLast:       25,
			MedianMonthsUntilDepletion: &depletion,
			SafeMonthlyWithdrawal:      3100,
			NetMonthlyNeed:             3500,
		},
		SuccessThreshold: 0.9,
	}

	var buf bytes.Buffer
	require.NoError(t, r.Retirement(&buf, res, nil))
	out := buf.String()
	assert.Contains(t, out, "Accumulation: 10 years")
	assert.Contains(t, out, "82.0% of paths")
	assert.Contains(t, out, "Median depletion month   250")
	assert.Contains(t, out, "$3,100.00 at 90.0% success")
	assert.NotContains(t, out, "Required nest egg")
	assert.NotContains(t, out, "Return sensitivity")

	buf.Reset()
	require.NoError(t, r.Retirement(&buf, res, &models.ReturnThreshold{
		CurrentValue: 0.07, Threshold: 0.052, Margin: 0.018, SafetyLevel: "critical", Bounded: true,
	}))
	assert.Contains(t, buf.String(), "Margin                   +1.8% (critical)")
}

func TestRenderScenarios(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	baseline := sampleSimulation()
	shocked := sampleSimulation()
	shocked.Summary.Median = 21000
	months := 14
	results := []*models.ScenarioComparisonResult{
		{Scenario: scenario.Catalog()[9], Baseline: baseline, Shocked: shocked, MedianDifferencePercent: -0.3, MaterialImpact: true},
		{Scenario: scenario.Catalog()[3], Baseline: baseline, Shocked: baseline, RecoveryMonths: &months, RecoveredWithinHorizon: true},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Scenarios(&buf, results))
	out := buf.String()
	assert.Contains(t, out, "lost_decade")
	assert.Contains(t, out, "-30.0%")
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "14 mo")
	assert.Contains(t, out, "Baseline median $30,000 (seed 7)")

	buf.Reset()
	require.NoError(t, r.Scenarios(&buf, nil))
	assert.NotContains(t, buf.String(), "Baseline")
}

func TestRenderCatalog(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Catalog(&buf, scenario.Catalog()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 12)
	assert.Contains(t, lines[0], "severe_recession")
	assert.Contains(t, lines[0], "-50.0%")
	assert.Contains(t, lines[11], "+60.0%")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleSimulation()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.NotContains(t, decoded, "FinalBalances")
}
