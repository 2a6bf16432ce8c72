package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast/internal/models"
)

// AssertOrderedSummary checks min <= p10 <= p25 <= median <= p75 <= p90 <= max
func AssertOrderedSummary(t *testing.T, s models.Summary) {
	t.Helper()
	ordered := []float64{s.Min, s.P10, s.P25, s.Median, s.P75, s.P90, s.Max}
	for i := 1; i < len(ordered); i++ {
		assert.LessOrEqual(t, ordered[i-1], ordered[i], "summary out of order at position %d: %+v", i, s)
	}
	assert.GreaterOrEqual(t, s.StdDev, 0.0)
}

// AssertOrderedSeries checks percentile ordering for every period
func AssertOrderedSeries(t *testing.T, series []models.PeriodSummary) {
	t.Helper()
	for _, ps := range series {
		ordered := []float64{ps.P10, ps.P25, ps.Median, ps.P75, ps.P90}
		for i := 1; i < len(ordered); i++ {
			if ordered[i-1] > ordered[i] {
				t.Errorf("period %d percentiles out of order: %+v", ps.Period, ps)
				break
			}
		}
	}
}

// AssertNonNegative checks that no balance in the result is negative
func AssertNonNegative(t *testing.T, res *models.SimulationResult) {
	t.Helper()
	for i, b := range res.FinalBalances {
		if b < 0 {
			t.Fatalf("iteration %d final balance %g is negative", i, b)
		}
	}
	for _, ps := range res.TimeSeries {
		if ps.P10 < 0 || ps.Mean < 0 {
			t.Fatalf("period %d has negative statistics: %+v", ps.Period, ps)
		}
	}
}

// AssertProbability checks that p is a valid probability
func AssertProbability(t *testing.T, p float64) {
	t.Helper()
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

// AssertSameOutcome checks that two results carry identical numbers,
// ignoring run identity and timestamps.
func AssertSameOutcome(t *testing.T, want, got *models.SimulationResult) {
	t.Helper()
	require.NotNil(t, want)
	require.NotNil(t, got)
	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.TimeSeries, got.TimeSeries)
	assert.Equal(t, want.FinalBalances, got.FinalBalances)
	assert.Equal(t, want.DepletionMonths, got.DepletionMonths)
	assert.Equal(t, want.Distribution, got.Distribution)
}
