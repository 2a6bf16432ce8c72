package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast/internal/apperrors"
)

func TestSharpeRatio(t *testing.T) {
	got, err := SharpeRatio([]float64{0.01, 0.03}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-12)

	got, err = SharpeRatio([]float64{0.01, 0.03}, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)

	_, err = SharpeRatio([]float64{0.02, 0.02}, 0)
	assert.ErrorIs(t, err, apperrors.ErrComputation)
}

func TestValueAtRisk(t *testing.T) {
	returns := []float64{0.10, -0.05, 0, 0.05, -0.10}

	got, err := ValueAtRisk(returns, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, got, 1e-12)

	got, err = ValueAtRisk(returns, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.09, got, 1e-12)

	got, err = ValueAtRisk([]float64{0.01, 0.02, 0.03}, 0.95)
	require.NoError(t, err)
	assert.Zero(t, got, "no losses")

	_, err = ValueAtRisk(returns, 1)
	assert.ErrorIs(t, err, apperrors.ErrComputation)
}

func TestExpectedShortfallCVaR(t *testing.T) {
	returns := []float64{0.10, -0.05, 0, 0.05, -0.10}
	got, err := ExpectedShortfallCVaR(returns, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.075, got, 1e-12)

	varLoss, err := ValueAtRisk(returns, 0.75)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, varLoss)

	_, err = ExpectedShortfallCVaR(returns, 0)
	assert.ErrorIs(t, err, apperrors.ErrComputation)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{1, 2, 3}, 0},
		{"single dip", []float64{100, 120, 90}, 0.25},
		{"deepest later", []float64{100, 120, 90, 130, 65}, 0.5},
		{"wiped out", []float64{0, 50, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdown(tt.values), 1e-12)
		})
	}
}

func TestPeriodReturns(t *testing.T) {
	got := PeriodReturns([]float64{100, 110, 0, 50})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.10, got[0], 1e-12)
	assert.InDelta(t, -1.0, got[1], 1e-12)
	assert.Nil(t, PeriodReturns([]float64{1}))
}
