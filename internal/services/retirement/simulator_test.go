package retirement

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast/internal/apperrors"
	"forecast/internal/models"
	"forecast/internal/services/simulation"
	"forecast/internal/testutil"
)

func baseParams() models.RetirementParams {
	return models.RetirementParams{
		Accumulation: models.SimulationConfig{
			InitialBalance:  50000,
			MonthlyCashFlow: 1000,
			Iterations:      1000,
			ExpectedReturn:  0.07,
			Volatility:      0.15,
		}.WithSeed(testutil.Seed),
		CurrentAge:            40,
		RetirementAge:         65,
		LifeExpectancyAge:     90,
		MonthlyExpenses:       5000,
		ExternalMonthlyIncome: 2000,
		InflationAdjusted:     true,
		InflationRate:         0.025,
	}
}

func newTestSimulator() *Simulator {
	return NewSimulator(simulation.NewEngine())
}

func TestSimulateShape(t *testing.T) {
	res, err := newTestSimulator().Simulate(context.Background(), baseParams())
	require.NoError(t, err)

	assert.Equal(t, 25, res.Accumulation.YearsToRetirement)
	assert.Equal(t, 300000.0, res.Accumulation.TotalContributions)
	assert.Equal(t, 300, res.Accumulation.Simulation.Periods)
	assert.Equal(t, res.Accumulation.Simulation.Summary, res.Accumulation.FinalBalance)
	testutil.AssertOrderedSummary(t, res.Accumulation.FinalBalance)

	assert.Equal(t, 25, res.Withdrawal.YearsInRetirement)
	assert.Equal(t, 300, res.Withdrawal.Simulation.Periods)
	assert.Equal(t, 3000.0, res.Withdrawal.NetMonthlyNeed)
	assert.Equal(t, models.DefaultSuccessThreshold, res.SuccessThreshold)
	testutil.AssertProbability(t, res.Withdrawal.ProbabilityOfNotRunningOut)
	assert.GreaterOrEqual(t, res.Withdrawal.MedianYearsFundsLast, 0.0)
	assert.LessOrEqual(t, res.Withdrawal.MedianYearsFundsLast, 25.0)
	assert.Positive(t, res.Withdrawal.SafeMonthlyWithdrawal)
	require.NotNil(t, res.Withdrawal.RequiredNestEgg)
	assert.Greater(t, *res.Withdrawal.RequiredNestEgg, 3000.0*300*0.3)
}

func TestSimulatePhaseCorrelation(t *testing.T) {
	res, err := newTestSimulator().Simulate(context.Background(), baseParams())
	require.NoError(t, err)

	acc := res.Accumulation.Simulation.FinalBalances
	wd := res.Withdrawal.Simulation.StartingBalances
	require.Len(t, wd, len(acc))
	for i := range acc {
		if acc[i] != wd[i] {
			t.Fatalf("iteration %d: withdrawal starts at %g, accumulation ended at %g", i, wd[i], acc[i])
		}
	}
}

func TestSimulateDeterministic(t *testing.T) {
	sim := newTestSimulator()
	a, err := sim.Simulate(context.Background(), baseParams())
	require.NoError(t, err)
	b, err := sim.Simulate(context.Background(), baseParams())
	require.NoError(t, err)

	testutil.AssertSameOutcome(t, a.Accumulation.Simulation, b.Accumulation.Simulation)
	testutil.AssertSameOutcome(t, a.Withdrawal.Simulation, b.Withdrawal.Simulation)
	assert.Equal(t, a.Withdrawal.SafeMonthlyWithdrawal, b.Withdrawal.SafeMonthlyWithdrawal)
	assert.Equal(t, a.Withdrawal.ProbabilityOfNotRunningOut, b.Withdrawal.ProbabilityOfNotRunningOut)
}

func TestSimulateSeedsFromClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	params := baseParams()
	params.Accumulation.Seed = nil
	params.Accumulation.Iterations = 50

	res, err := NewSimulator(simulation.NewEngine(), WithClock(func() time.Time { return fixed })).Simulate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, fixed.UnixNano(), res.Accumulation.Simulation.Seed)
	assert.Equal(t, simulation.DeriveSeed(fixed.UnixNano(), withdrawalStream), res.Withdrawal.Simulation.Seed)
}

func TestSafeWithdrawalIsLargestPassing(t *testing.T) {
	sim := newTestSimulator()
	params := baseParams()
	res, err := sim.Simulate(context.Background(), params)
	require.NoError(t, err)

	pl, err := sim.resolve(params)
	require.NoError(t, err)
	starts := res.Accumulation.Simulation.FinalBalances
	safe := res.Withdrawal.SafeMonthlyWithdrawal

	at, err := sim.withdrawalSuccess(context.Background(), pl, starts, safe)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, at, res.SuccessThreshold)

	above, err := sim.withdrawalSuccess(context.Background(), pl, starts, safe+withdrawalPrecision+0.01)
	require.NoError(t, err)
	assert.Less(t, above, res.SuccessThreshold)
}

func TestSimulateDepletion(t *testing.T) {
	params := baseParams()
	params.Accumulation.InitialBalance = 10000
	params.Accumulation.MonthlyCashFlow = 100
	params.MonthlyExpenses = 20000
	params.ExternalMonthlyIncome = 0

	res, err := newTestSimulator().Simulate(context.Background(), params)
	require.NoError(t, err)

	assert.Less(t, res.Withdrawal.ProbabilityOfNotRunningOut, 0.05)
	require.NotNil(t, res.Withdrawal.MedianMonthsUntilDepletion)
	assert.Positive(t, *res.Withdrawal.MedianMonthsUntilDepletion)
	assert.LessOrEqual(t, *res.Withdrawal.MedianMonthsUntilDepletion, 300.0)
	assert.Less(t, res.Withdrawal.MedianYearsFundsLast, 25.0)
	assert.Less(t, res.Withdrawal.SafeMonthlyWithdrawal, res.Withdrawal.NetMonthlyNeed)
	testutil.AssertNonNegative(t, res.Withdrawal.Simulation)
}

func TestSimulateWealthyPlanNeverDepletes(t *testing.T) {
	params := baseParams()
	params.Accumulation.InitialBalance = 5000000
	params.Accumulation.MonthlyCashFlow = 0
	params.MonthlyExpenses = 3000
	params.ExternalMonthlyIncome = 0

	res, err := newTestSimulator().Simulate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.Withdrawal.ProbabilityOfNotRunningOut)
	assert.Nil(t, res.Withdrawal.MedianMonthsUntilDepletion)
	assert.Equal(t, 25.0, res.Withdrawal.MedianYearsFundsLast)
	assert.Greater(t, res.Withdrawal.SafeMonthlyWithdrawal, 3000.0)
}

func TestSimulateZeroVolatility(t *testing.T) {
	params := baseParams()
	params.Accumulation.Volatility = 0
	params.Accumulation.Iterations = 20

	res, err := newTestSimulator().Simulate(context.Background(), params)
	require.NoError(t, err)

	s := res.Accumulation.FinalBalance
	assert.Equal(t, s.Mean, s.P10)
	assert.Equal(t, s.Mean, s.P90)
	p := res.Withdrawal.ProbabilityOfNotRunningOut
	assert.True(t, p == 0 || p == 1, "deterministic plan either survives or not, got %v", p)
}

func TestSimulateWithdrawalAssumptions(t *testing.T) {
	params := baseParams()
	params.Accumulation.Iterations = 200
	conservative := 0.03
	calm := 0.0
	params.WithdrawalReturn = &conservative
	params.WithdrawalVolatility = &calm

	res, err := newTestSimulator().Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 200, len(res.Withdrawal.Simulation.FinalBalances))

	// With no withdrawal volatility only the accumulation outcome matters,
	// so richer starting points never deplete sooner.
	wd := res.Withdrawal.Simulation
	for i := range wd.FinalBalances {
		for j := range wd.FinalBalances {
			if wd.StartingBalances[i] > wd.StartingBalances[j] {
				require.GreaterOrEqual(t, wd.FinalBalances[i], wd.FinalBalances[j])
			}
		}
	}
}

func TestSimulateIncomeSources(t *testing.T) {
	params := baseParams()
	params.Accumulation.Iterations = 100
	params.ExternalMonthlyIncome = 0
	pension := models.IncomeSource{Name: "pension", Amount: 2000}
	params.IncomeSources = []models.IncomeSource{pension}

	res, err := newTestSimulator().Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, res.Withdrawal.NetMonthlyNeed)
}

func TestSimulateValidation(t *testing.T) {
	negative := -0.1
	tests := []struct {
		name  string
		edit  func(*models.RetirementParams)
		field string
	}{
		{"retirement not after current", func(p *models.RetirementParams) { p.RetirementAge = 40 }, "retirement_age"},
		{"life not after retirement", func(p *models.RetirementParams) { p.LifeExpectancyAge = 65 }, "life_expectancy_age"},
		{"negative expenses", func(p *models.RetirementParams) { p.MonthlyExpenses = -1 }, "monthly_expenses"},
		{"negative income", func(p *models.RetirementParams) { p.ExternalMonthlyIncome = -1 }, "external_monthly_income"},
		{"threshold above one", func(p *models.RetirementParams) { p.SuccessThreshold = 1.5 }, "success_threshold"},
		{"inflation", func(p *models.RetirementParams) { p.InflationRate = -1 }, "inflation_rate"},
		{"accumulation iterations", func(p *models.RetirementParams) { p.Accumulation.Iterations = 0 }, "iterations"},
		{"withdrawal volatility", func(p *models.RetirementParams) { p.WithdrawalVolatility = &negative }, "withdrawal_volatility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams()
			tt.edit(&params)
			res, err := newTestSimulator().Simulate(context.Background(), params)
			require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
			assert.Nil(t, res)
			var ce *apperrors.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestSimulator().Simulate(ctx, baseParams())
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestMinimumReturnForThreshold(t *testing.T) {
	params := baseParams()
	params.Accumulation.InitialBalance = 100000
	params.Accumulation.Iterations = 200
	params.SuccessThreshold = 0.5

	th, err := newTestSimulator().MinimumReturnForThreshold(context.Background(), params)
	require.NoError(t, err)

	assert.True(t, th.Bounded)
	assert.Equal(t, 0.07, th.CurrentValue)
	assert.Greater(t, th.Threshold, returnSearchFloor)
	assert.Less(t, th.Threshold, 0.07)
	assert.InDelta(t, th.CurrentValue-th.Threshold, th.Margin, 1e-12)
	assert.Contains(t, []string{"safe", "marginal", "critical"}, th.SafetyLevel)
}

func TestNewReturnThreshold(t *testing.T) {
	tests := []struct {
		threshold float64
		want      string
	}{
		{0.02, "safe"},
		{0.055, "marginal"},
		{0.065, "critical"},
		{0.08, "failing"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, newReturnThreshold(0.07, tt.threshold, true).SafetyLevel)
		})
	}
}

func TestLifecycle(t *testing.T) {
	lc := newLifecycle(zerolog.Nop())
	assert.Equal(t, PhaseAccumulating, lc.phase)

	assert.Error(t, lc.advance(PhaseTerminal), "cannot skip withdrawal")
	require.NoError(t, lc.advance(PhaseWithdrawing))
	require.NoError(t, lc.advance(PhaseTerminal))
	assert.Error(t, lc.advance(PhaseAccumulating))

	assert.Equal(t, "withdrawing", PhaseWithdrawing.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

func TestNetNeed(t *testing.T) {
	end := 24
	p := models.RetirementParams{
		MonthlyExpenses:       4000,
		ExternalMonthlyIncome: 1000,
		InflationAdjusted:     true,
		InflationRate:         0.03,
		IncomeSources: []models.IncomeSource{
			{Name: "annuity", Amount: 500, StartMonth: 12, EndMonth: &end},
		},
		ExpenseSources: []models.ExpenseSource{
			{Name: "care", Amount: 200, StartYear: 1, Inflation: true},
		},
	}

	assert.InDelta(t, 3000, netNeed(p, 0), 1e-9)
	assert.InDelta(t, 3000*1.03+200-500, netNeed(p, 12), 1e-9)
	assert.InDelta(t, 3000*1.03*1.03+200*1.03, netNeed(p, 24), 1e-9)

	flow := withdrawalFlow(p)
	assert.InDelta(t, -3000, flow(0), 1e-9)

	p.InflationAdjusted = false
	assert.InDelta(t, 3000, netNeed(p, 24)-200, 1e-9)
	assert.InDelta(t, -100, fixedWithdrawalFlow(p, 100)(200), 1e-12)
}
