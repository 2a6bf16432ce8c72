// Package goal estimates the probability of reaching a savings target by a
// date and suggests a contribution that would put the median outcome on it.
package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"forecast/internal/apperrors"
	"forecast/internal/models"
	"forecast/internal/services/simulation"
	"forecast/internal/services/stats"
)

// Bracket for the median-implied monthly rate search
const (
	minImpliedRate = -0.99
	maxImpliedRate = 1.0
)

// Calculator runs goal probability analyses on a shared engine
type Calculator struct {
	engine *simulation.Engine
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Calculator
type Option func(*Calculator)

// WithLogger sets the calculator's logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Calculator) { c.logger = l }
}

// WithClock sets the clock that defines "now" for target dates
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator creates a goal calculator backed by engine
func NewCalculator(engine *simulation.Engine, opts ...Option) *Calculator {
	c := &Calculator{engine: engine, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MonthsBetween counts whole months from start to end. A month only counts
// once end reaches the same day of month as start.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

// Calculate estimates how likely cfg is to reach targetAmount by targetDate.
// When cfg.Periods is zero it is derived from the target date; otherwise it
// must agree with it.
func (c *Calculator) Calculate(ctx context.Context, cfg models.SimulationConfig, targetAmount float64, targetDate time.Time) (*models.GoalProbabilityResult, error) {
	if targetAmount <= 0 {
		return nil, apperrors.NewConfigError("target_amount", "must be positive, got %g", targetAmount)
	}
	now := c.now()
	if !targetDate.After(now) {
		return nil, apperrors.NewConfigError("target_date", "must be after %s", now.Format(time.DateOnly))
	}
	months := MonthsBetween(now, targetDate)
	if months < 1 {
		return nil, apperrors.NewConfigError("target_date", "must be at least one month after %s", now.Format(time.DateOnly))
	}
	switch {
	case cfg.Periods == 0:
		cfg.Periods = months
	case cfg.Periods != months:
		return nil, apperrors.NewConfigError("periods", "%d months conflicts with target date %d months away", cfg.Periods, months)
	}

	res, err := c.engine.Run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("goal simulation: %w", err)
	}

	result, err := Evaluate(cfg, res, targetAmount)
	if err != nil {
		return nil, err
	}
	result.TargetDate = targetDate

	c.logger.Debug().
		Str("run_id", res.RunID).
		Float64("target", targetAmount).
		Int("months", months).
		Float64("probability", result.ProbabilityOfSuccess).
		Msg("goal probability computed")
	return result, nil
}

// Evaluate derives the goal statistics from a finished simulation of cfg
func Evaluate(cfg models.SimulationConfig, res *models.SimulationResult, targetAmount float64) (*models.GoalProbabilityResult, error) {
	hits := 0
	for _, b := range res.FinalBalances {
		if b >= targetAmount {
			hits++
		}
	}
	median := res.Summary.Median

	rate := ImpliedMonthlyReturn(cfg, median)
	payment, err := stats.AnnuityPayment(cfg.InitialBalance, targetAmount, rate, cfg.Periods)
	if err != nil {
		return nil, fmt.Errorf("recommended contribution: %w", err)
	}

	return &models.GoalProbabilityResult{
		TargetAmount:         targetAmount,
		MonthsRemaining:      cfg.Periods,
		ProbabilityOfSuccess: float64(hits) / float64(len(res.FinalBalances)),
		MedianOutcome:        median,
		ExpectedShortfall:    max(0, targetAmount-median),
		ConfidenceBand: models.ConfidenceBand{
			P10: res.Summary.P10,
			P90: res.Summary.P90,
		},
		RecommendedMonthlyContribution: max(0, payment),
		RecommendationMethod:           models.RecommendationMedianAnnuity,
		ImpliedMonthlyReturn:           rate,
		Simulation:                     res,
	}, nil
}

// ImpliedMonthlyReturn returns the monthly rate at which the deterministic
// future value of cfg equals median. It falls back to the configured drift
// when the median is zero or no rate in range reproduces it.
func ImpliedMonthlyReturn(cfg models.SimulationConfig, median float64) float64 {
	drift := stats.AnnualToMonthlyReturn(cfg.ExpectedReturn)
	if median <= 0 {
		return drift
	}
	rate, err := stats.ImpliedMonthlyRate(cfg.InitialBalance, cfg.MonthlyCashFlow, median, cfg.Periods, minImpliedRate, maxImpliedRate)
	if err != nil {
		return drift
	}
	return rate
}
