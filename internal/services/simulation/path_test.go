package simulation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource replays fixed draws and counts how many were taken
type sequenceSource struct {
	draws []float64
	calls int
}

func (s *sequenceSource) NormFloat64() float64 {
	z := s.draws[s.calls%len(s.draws)]
	s.calls++
	return z
}

func TestPathModelSimulate(t *testing.T) {
	m := PathModel{MonthlyDrift: 0.01, MonthlyVolatility: 0.1}
	row := make([]float64, 2)
	src := &sequenceSource{draws: []float64{1, -1}}

	depleted := m.Simulate(row, 100, []float64{0, 0}, src, nil)

	assert.Zero(t, depleted)
	assert.InDelta(t, 111, row[0], 1e-9)
	assert.InDelta(t, 101.01, row[1], 1e-9)
}

func TestPathModelFloorsAtZero(t *testing.T) {
	m := PathModel{MonthlyDrift: 0, MonthlyVolatility: 0}
	row := make([]float64, 5)

	depleted := m.SimulateDeterministic(row, 250, []float64{-100, -100, -100, 50, -100}, nil)

	assert.Equal(t, []float64{150, 50, 0, 50, 0}, row)
	assert.Equal(t, 3, depleted, "first month at zero")
}

func TestPathModelOverrideStillDraws(t *testing.T) {
	m := PathModel{MonthlyDrift: 0.01, MonthlyVolatility: 0.05}
	row := make([]float64, 4)
	src := &sequenceSource{draws: []float64{0.5}}
	override := func(period int) (float64, bool) {
		if period < 2 {
			return -0.5, true
		}
		return 0, false
	}

	m.Simulate(row, 1000, make([]float64, 4), src, override)

	assert.Equal(t, 4, src.calls, "one draw per month regardless of override")
	assert.InDelta(t, 500, row[0], 1e-9)
	assert.InDelta(t, 250, row[1], 1e-9)
	assert.InDelta(t, 250*1.035, row[2], 1e-9)
}

func TestPairedPathsShareDraws(t *testing.T) {
	m := NewPathModel(0.07, 0.15)
	flows := make([]float64, 24)
	base := make([]float64, 24)
	shocked := make([]float64, 24)

	m.Simulate(base, 1000, flows, rand.New(rand.NewPCG(1, 1)), nil)
	m.Simulate(shocked, 1000, flows, rand.New(rand.NewPCG(1, 1)), func(period int) (float64, bool) {
		return -0.2, period == 0
	})

	// Without cash flows a one-month shock scales every later balance by the
	// same factor.
	ratio := shocked[0] / base[0]
	for t := 1; t < len(base); t++ {
		require.InEpsilon(t, ratio, shocked[t]/base[t], 1e-9, "month %d", t)
	}
}

func TestConstantFlow(t *testing.T) {
	f := ConstantFlow(-250)
	assert.Equal(t, -250.0, f(0))
	assert.Equal(t, -250.0, f(99))
}

func TestNewPathModel(t *testing.T) {
	m := NewPathModel(0.07, 0.15)
	assert.InDelta(t, 0.005654145387405274, m.MonthlyDrift, 1e-15)
	assert.InDelta(t, 0.04330127018922193, m.MonthlyVolatility, 1e-15)
}
