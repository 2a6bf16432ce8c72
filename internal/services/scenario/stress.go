// Package scenario stress-tests a plan against stylized historical market
// events by comparing a baseline run with a shocked twin that sees the same
// random draws.
package scenario

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"forecast/internal/apperrors"
	"forecast/internal/models"
	"forecast/internal/services/simulation"
)

// Defaults for WithThresholds
const (
	// MaterialImpactThreshold is the relative median change above which a
	// scenario counts as material.
	MaterialImpactThreshold = 0.10
	// RecoveryTolerance is how close, relative to the baseline median, the
	// shocked median must come to count as recovered.
	RecoveryTolerance = 0.01
)

// StressTester compares baseline and shocked runs on a shared engine
type StressTester struct {
	engine    *simulation.Engine
	logger    zerolog.Logger
	now       func() time.Time
	material  float64
	tolerance float64
}

// Option configures a StressTester
type Option func(*StressTester)

// WithLogger sets the stress tester's logger
func WithLogger(l zerolog.Logger) Option {
	return func(st *StressTester) { st.logger = l }
}

// WithClock sets the clock used to seed unseeded configs
func WithClock(now func() time.Time) Option {
	return func(st *StressTester) { st.now = now }
}

// WithThresholds overrides the material impact threshold and the recovery
// tolerance
func WithThresholds(material, tolerance float64) Option {
	return func(st *StressTester) {
		st.material = material
		st.tolerance = tolerance
	}
}

// NewStressTester creates a stress tester backed by engine
func NewStressTester(engine *simulation.Engine, opts ...Option) *StressTester {
	st := &StressTester{
		engine:    engine,
		logger:    zerolog.Nop(),
		now:       time.Now,
		material:  MaterialImpactThreshold,
		tolerance: RecoveryTolerance,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Compare runs cfg with and without the canonical scenario scenarioID
func (st *StressTester) Compare(ctx context.Context, cfg models.SimulationConfig, scenarioID string) (*models.ScenarioComparisonResult, error) {
	s, err := Lookup(scenarioID)
	if err != nil {
		return nil, err
	}
	return st.CompareWith(ctx, cfg, s)
}

// CompareWith runs cfg with and without an arbitrary scenario. The two runs
// execute concurrently with the same seed.
func (st *StressTester) CompareWith(ctx context.Context, cfg models.SimulationConfig, s models.Scenario) (*models.ScenarioComparisonResult, error) {
	cfg, err := st.prepare(cfg, s)
	if err != nil {
		return nil, err
	}

	var baseline, shocked *models.SimulationResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		baseline, err = st.engine.RunPaths(gctx, cfg, simulation.PathOptions{Kind: "baseline"})
		return err
	})
	g.Go(func() error {
		var err error
		shocked, err = st.runShocked(gctx, cfg, s)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.ID, err)
	}

	return st.compare(s, baseline, shocked)
}

// CompareAll runs one baseline and a shocked twin for every canonical
// scenario, in catalog order.
func (st *StressTester) CompareAll(ctx context.Context, cfg models.SimulationConfig) ([]*models.ScenarioComparisonResult, error) {
	scenarios := Catalog()
	cfg, err := st.prepare(cfg, scenarios[0])
	if err != nil {
		return nil, err
	}

	baseline, err := st.engine.RunPaths(ctx, cfg, simulation.PathOptions{Kind: "baseline"})
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	results := make([]*models.ScenarioComparisonResult, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, s := range scenarios {
		g.Go(func() error {
			shocked, err := st.runShocked(gctx, cfg, s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.ID, err)
			}
			results[i], err = st.compare(s, baseline, shocked)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// prepare validates inputs and pins a seed so paired runs share draws
func (st *StressTester) prepare(cfg models.SimulationConfig, s models.Scenario) (models.SimulationConfig, error) {
	if err := Validate(s); err != nil {
		return cfg, err
	}
	if err := simulation.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	if cfg.Seed == nil {
		cfg = cfg.WithSeed(st.now().UnixNano())
	}
	return cfg, nil
}

func (st *StressTester) runShocked(ctx context.Context, cfg models.SimulationConfig, s models.Scenario) (*models.SimulationResult, error) {
	drift := simulation.NewPathModel(cfg.ExpectedReturn, cfg.Volatility).MonthlyDrift
	return st.engine.RunPaths(ctx, cfg, simulation.PathOptions{
		Override: ShockReturns(s, drift),
		Kind:     "shocked",
	})
}

func (st *StressTester) compare(s models.Scenario, baseline, shocked *models.SimulationResult) (*models.ScenarioComparisonResult, error) {
	bm, sm := baseline.Summary.Median, shocked.Summary.Median
	if bm == 0 {
		return nil, apperrors.NewComputationError("compare_scenario", "baseline median is zero, relative impact undefined")
	}
	pct := (sm - bm) / bm

	res := &models.ScenarioComparisonResult{
		Scenario:                s,
		Baseline:                baseline,
		Shocked:                 shocked,
		MedianDifference:        sm - bm,
		MedianDifferencePercent: pct,
		P10Difference:           shocked.Summary.P10 - baseline.Summary.P10,
		MaterialImpact:          math.Abs(pct) > st.material,
	}
	if months, ok := recoveryMonths(s, baseline.TimeSeries, shocked.TimeSeries, st.tolerance); ok {
		res.RecoveryMonths = &months
		res.RecoveredWithinHorizon = true
	}

	st.logger.Debug().
		Str("scenario", s.ID).
		Str("baseline_run", baseline.RunID).
		Str("shocked_run", shocked.RunID).
		Float64("median_change", pct).
		Bool("material", res.MaterialImpact).
		Msg("scenario compared")
	return res, nil
}

// recoveryMonths finds the first month after the decline window in which
// the shocked median is back within tolerance of the baseline median, and
// reports it as months since the decline ended.
func recoveryMonths(s models.Scenario, baseline, shocked []models.PeriodSummary, tolerance float64) (int, bool) {
	for t := s.DeclineMonths; t < len(baseline) && t < len(shocked); t++ {
		bm := baseline[t].Median
		if math.Abs(shocked[t].Median-bm) <= tolerance*bm {
			return t - s.DeclineMonths + 1, true
		}
	}
	return 0, false
}
