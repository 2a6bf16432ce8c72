// Package retirement simulates saving until a retirement age and then
// drawing the portfolio down until life expectancy, pairing each
// accumulation path with its own withdrawal path.
package retirement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"forecast/internal/apperrors"
	"forecast/internal/models"
	"forecast/internal/services/simulation"
	"forecast/internal/services/stats"
)

// withdrawalStream separates the withdrawal phase's draws from the
// accumulation phase's under the same base seed
const withdrawalStream = 0x77697468

// Simulator runs two-phase retirement projections on a shared engine
type Simulator struct {
	engine *simulation.Engine
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the simulator's logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithClock sets the clock used to seed unseeded plans
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// NewSimulator creates a retirement simulator backed by engine
func NewSimulator(engine *simulation.Engine, opts ...Option) *Simulator {
	s := &Simulator{engine: engine, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// plan is a validated RetirementParams with both phase configs resolved
type plan struct {
	params       models.RetirementParams
	accumulation models.SimulationConfig
	withdrawal   models.SimulationConfig
}

// Validate rejects retirement parameters before any simulation runs
func Validate(p models.RetirementParams) error {
	switch {
	case p.CurrentAge < 0:
		return apperrors.NewConfigError("current_age", "must not be negative, got %d", p.CurrentAge)
	case p.RetirementAge <= p.CurrentAge:
		return apperrors.NewConfigError("retirement_age", "must be after current age %d, got %d", p.CurrentAge, p.RetirementAge)
	case p.LifeExpectancyAge <= p.RetirementAge:
		return apperrors.NewConfigError("life_expectancy_age", "must be after retirement age %d, got %d", p.RetirementAge, p.LifeExpectancyAge)
	case math.IsNaN(p.MonthlyExpenses) || p.MonthlyExpenses < 0:
		return apperrors.NewConfigError("monthly_expenses", "must not be negative, got %g", p.MonthlyExpenses)
	case math.IsNaN(p.ExternalMonthlyIncome) || p.ExternalMonthlyIncome < 0:
		return apperrors.NewConfigError("external_monthly_income", "must not be negative, got %g", p.ExternalMonthlyIncome)
	case math.IsNaN(p.InflationRate) || p.InflationRate <= -1:
		return apperrors.NewConfigError("inflation_rate", "must be above -1, got %g", p.InflationRate)
	case p.SuccessThreshold < 0 || p.SuccessThreshold > 1:
		return apperrors.NewConfigError("success_threshold", "must be within [0, 1], got %g", p.SuccessThreshold)
	}
	return nil
}

func (s *Simulator) resolve(p models.RetirementParams) (*plan, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if p.SuccessThreshold == 0 {
		p.SuccessThreshold = models.DefaultSuccessThreshold
	}

	acc := p.Accumulation
	acc.Periods = p.AccumulationMonths()
	if acc.Seed == nil {
		acc = acc.WithSeed(s.now().UnixNano())
	}

	wd := models.SimulationConfig{
		Periods:        p.WithdrawalMonths(),
		Iterations:     acc.Iterations,
		ExpectedReturn: acc.ExpectedReturn,
		Volatility:     acc.Volatility,
	}.WithSeed(simulation.DeriveSeed(*acc.Seed, withdrawalStream))
	if p.WithdrawalReturn != nil {
		wd.ExpectedReturn = *p.WithdrawalReturn
	}
	if p.WithdrawalVolatility != nil {
		wd.Volatility = *p.WithdrawalVolatility
	}

	if err := simulation.ValidateConfig(acc); err != nil {
		return nil, err
	}
	if err := simulation.ValidateConfig(wd); err != nil {
		var ce *apperrors.ConfigError
		if errors.As(err, &ce) {
			return nil, apperrors.NewConfigError("withdrawal_"+ce.Field, "%s", ce.Reason)
		}
		return nil, err
	}
	return &plan{params: p, accumulation: acc, withdrawal: wd}, nil
}

// phaseRuns holds the raw outcome of both phases
type phaseRuns struct {
	accumulation *models.SimulationResult
	withdrawal   *models.SimulationResult
}

// runPhases executes accumulation then withdrawal, handing each
// accumulation path's final balance to the withdrawal path of the same index
func (s *Simulator) runPhases(ctx context.Context, pl *plan) (*phaseRuns, error) {
	lc := newLifecycle(s.logger)

	acc, err := s.engine.RunPaths(ctx, pl.accumulation, simulation.PathOptions{Kind: "accumulation"})
	if err != nil {
		return nil, fmt.Errorf("accumulation phase: %w", err)
	}
	if err := lc.advance(PhaseWithdrawing); err != nil {
		return nil, err
	}

	wd, err := s.engine.RunPaths(ctx, pl.withdrawal, simulation.PathOptions{
		StartingBalances: acc.FinalBalances,
		CashFlow:         withdrawalFlow(pl.params),
		Kind:             "withdrawal",
	})
	if err != nil {
		return nil, fmt.Errorf("withdrawal phase: %w", err)
	}
	if err := lc.advance(PhaseTerminal); err != nil {
		return nil, err
	}
	return &phaseRuns{accumulation: acc, withdrawal: wd}, nil
}

// Simulate projects the plan through accumulation and withdrawal and
// searches for the safe monthly withdrawal
func (s *Simulator) Simulate(ctx context.Context, p models.RetirementParams) (*models.RetirementResult, error) {
	pl, err := s.resolve(p)
	if err != nil {
		return nil, err
	}

	runs, err := s.runPhases(ctx, pl)
	if err != nil {
		return nil, err
	}

	safe, err := s.safeWithdrawal(ctx, pl, runs.accumulation.FinalBalances)
	if err != nil {
		return nil, fmt.Errorf("safe withdrawal search: %w", err)
	}

	result := &models.RetirementResult{
		Accumulation: models.AccumulationResult{
			YearsToRetirement:  pl.params.RetirementAge - pl.params.CurrentAge,
			FinalBalance:       runs.accumulation.Summary,
			TotalContributions: pl.accumulation.MonthlyCashFlow * float64(pl.accumulation.Periods),
			Simulation:         runs.accumulation,
		},
		Withdrawal:       s.summarizeWithdrawal(pl, runs.withdrawal),
		SuccessThreshold: pl.params.SuccessThreshold,
	}
	result.Withdrawal.SafeMonthlyWithdrawal = safe

	s.logger.Debug().
		Str("accumulation_run", runs.accumulation.RunID).
		Str("withdrawal_run", runs.withdrawal.RunID).
		Float64("success", result.Withdrawal.ProbabilityOfNotRunningOut).
		Float64("safe_withdrawal", safe).
		Msg("retirement simulated")
	return result, nil
}

func (s *Simulator) summarizeWithdrawal(pl *plan, wd *models.SimulationResult) models.WithdrawalResult {
	months := pl.withdrawal.Periods
	survivors := 0
	lasted := make([]float64, len(wd.FinalBalances))
	var depletion []float64
	for i, final := range wd.FinalBalances {
		if final > 0 {
			survivors++
			lasted[i] = float64(months)
			continue
		}
		m := float64(wd.DepletionMonths[i])
		lasted[i] = m
		depletion = append(depletion, m)
	}

	out := models.WithdrawalResult{
		YearsInRetirement:          pl.params.LifeExpectancyAge - pl.params.RetirementAge,
		ProbabilityOfNotRunningOut: float64(survivors) / float64(len(wd.FinalBalances)),
		MedianYearsFundsLast:       stats.Percentile(lasted, 50) / 12,
		NetMonthlyNeed:             netNeed(pl.params, 0),
		Simulation:                 wd,
	}
	if len(depletion) > 0 {
		median := stats.Percentile(depletion, 50)
		out.MedianMonthsUntilDepletion = &median
	}
	out.RequiredNestEgg = s.requiredNestEgg(pl)
	return out
}

// requiredNestEgg discounts the growing net need at the withdrawal drift.
// It is undefined when the drift equals inflation or there is no need.
func (s *Simulator) requiredNestEgg(pl *plan) *float64 {
	need := netNeed(pl.params, 0)
	if need <= 0 {
		return nil
	}
	rate := stats.AnnualToMonthlyReturn(pl.withdrawal.ExpectedReturn)
	pv, err := stats.GrowingAnnuityPresentValue(need, rate, monthlyInflation(pl.params), pl.withdrawal.Periods)
	if err != nil {
		s.logger.Debug().Err(err).Msg("required nest egg undefined")
		return nil
	}
	return &pv
}

// successRate returns the fraction of withdrawal paths that end above zero
func successRate(finals []float64) float64 {
	survivors := 0
	for _, b := range finals {
		if b > 0 {
			survivors++
		}
	}
	return float64(survivors) / float64(len(finals))
}

func medianOf(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stats.PercentileSorted(sorted, 50)
}
