// Package metrics records simulation run telemetry in Prometheus form.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder implements simulation.Observer on top of a Prometheus registry
type Recorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	paths    *prometheus.CounterVec
	months   *prometheus.CounterVec
}

// NewRecorder registers the forecast metrics with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_simulation_runs_total",
				Help: "Simulation runs by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_simulation_duration_seconds",
				Help:    "Wall time of a simulation run",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"kind"},
		),
		paths: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_simulation_paths_total",
				Help: "Monte Carlo paths simulated",
			},
			[]string{"kind"},
		),
		months: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_simulation_path_months_total",
				Help: "Path-months stepped across all runs",
			},
			[]string{"kind"},
		),
	}
}

// ObserveRun records one finished run. Failed runs count toward the run
// total only.
func (r *Recorder) ObserveRun(kind string, iterations, periods int, elapsed time.Duration, err error) {
	if err != nil {
		r.runs.WithLabelValues(kind, OutcomeError).Inc()
		return
	}
	r.runs.WithLabelValues(kind, OutcomeSuccess).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	r.paths.WithLabelValues(kind).Add(float64(iterations))
	r.months.WithLabelValues(kind).Add(float64(iterations) * float64(periods))
}
