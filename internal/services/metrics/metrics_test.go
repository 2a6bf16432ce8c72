package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast/internal/models"
	"forecast/internal/services/simulation"
)

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveRun("simulation", 100, 12, 20*time.Millisecond, nil)
	r.ObserveRun("simulation", 50, 12, 10*time.Millisecond, nil)
	r.ObserveRun("survival", 10, 6, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("simulation", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("survival", OutcomeError)))
	assert.Equal(t, 150.0, testutil.ToFloat64(r.paths.WithLabelValues("simulation")))
	assert.Equal(t, 1800.0, testutil.ToFloat64(r.months.WithLabelValues("simulation")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.paths.WithLabelValues("survival")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorderExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveRun("simulation", 3, 2, time.Millisecond, nil)

	expected := `
# HELP forecast_simulation_runs_total Simulation runs by kind and outcome
# TYPE forecast_simulation_runs_total counter
forecast_simulation_runs_total{kind="simulation",outcome="success"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "forecast_simulation_runs_total")
	assert.NoError(t, err)
}

func TestRecorderAsEngineObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	engine := simulation.NewEngine(simulation.WithObserver(r))

	cfg := models.SimulationConfig{
		InitialBalance: 1000,
		Periods:        12,
		Iterations:     40,
		ExpectedReturn: 0.05,
		Volatility:     0.1,
	}.WithSeed(7)
	_, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), models.SimulationConfig{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(simulation.KindSimulation, OutcomeSuccess)))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.paths.WithLabelValues(simulation.KindSimulation)))
}

func TestNewRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}
