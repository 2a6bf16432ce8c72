package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast/internal/apperrors"
)

var testDefaults = Defaults{Iterations: 10000, SuccessThreshold: 0.9}

func loadHousehold(t *testing.T) *Plan {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "household.yaml"))
	require.NoError(t, err)
	defer f.Close()

	p, err := Parse(f)
	require.NoError(t, err)
	return p
}

func TestParseHousehold(t *testing.T) {
	p := loadHousehold(t)

	assert.Equal(t, "household", p.Name)
	require.NotNil(t, p.Seed)
	assert.Equal(t, int64(20240601), *p.Seed)
	assert.Equal(t, 120, p.Horizon)
	assert.Equal(t, []string{"covid_crash_2020", "great_recession_2008"}, p.Scenarios)

	require.NotNil(t, p.Retirement)
	require.Len(t, p.Retirement.IncomeSources, 2)
	ss := p.Retirement.IncomeSources[0]
	assert.Equal(t, 1800.0, ss.Amount)
	assert.Equal(t, 24, ss.StartMonth)
	assert.Nil(t, ss.EndMonth)
	pension := p.Retirement.IncomeSources[1]
	require.NotNil(t, pension.EndMonth)
	assert.Equal(t, 120, *pension.EndMonth)
	require.Len(t, p.Retirement.ExpenseSources, 1)
	assert.True(t, p.Retirement.ExpenseSources[0].Inflation)
}

func TestSimulationConfig(t *testing.T) {
	p := loadHousehold(t)
	cfg := p.SimulationConfig(testDefaults)

	assert.Equal(t, 10000.0, cfg.InitialBalance)
	assert.Equal(t, 500.0, cfg.MonthlyCashFlow)
	assert.Equal(t, 120, cfg.Periods)
	assert.Equal(t, 2000, cfg.Iterations)
	assert.Equal(t, 0.07, cfg.ExpectedReturn)
	assert.Equal(t, 0.15, cfg.Volatility)
	require.NotNil(t, cfg.Seed)

	p.Iterations = 0
	assert.Equal(t, 10000, p.SimulationConfig(testDefaults).Iterations)
}

func TestGoalRequest(t *testing.T) {
	p := loadHousehold(t)
	req, err := p.GoalRequest(testDefaults)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, req.TargetAmount)
	assert.Equal(t, time.Date(2035, 6, 1, 0, 0, 0, 0, time.UTC), req.TargetDate)
	assert.Zero(t, req.Config.Periods)

	p.Goal = nil
	_, err = p.GoalRequest(testDefaults)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestRetirementParams(t *testing.T) {
	p := loadHousehold(t)
	params, err := p.RetirementParams(testDefaults)
	require.NoError(t, err)

	assert.Equal(t, 120, params.AccumulationMonths())
	assert.Equal(t, 300, params.WithdrawalMonths())
	assert.Equal(t, 0.9, params.SuccessThreshold)
	require.NotNil(t, params.WithdrawalReturn)
	assert.Equal(t, 0.05, *params.WithdrawalReturn)
	assert.Equal(t, 600.0, params.IncomeSources[1].AmountAt(0))
	assert.Equal(t, 0.0, params.IncomeSources[0].AmountAt(23))
	assert.Equal(t, 1800.0, params.IncomeSources[0].AmountAt(24))

	p.Retirement = nil
	_, err = p.RetirementParams(testDefaults)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "", "file is empty"},
		{"unknown key", "name: x\nportfolio:\n  balance: 10\n", "field balance not found"},
		{"missing name", "portfolio:\n  initial_balance: 10\n", "name"},
		{"bad date", "name: x\ngoal:\n  target_amount: 5\n  target_date: June 2030\n", "goal.target_date"},
		{"unknown scenario", "name: x\nscenarios: [alien_invasion]\n", "scenario_id"},
		{"not yaml", "name: [unclosed\n", "decoding plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p := loadHousehold(t)
	data, err := Marshal(p)
	require.NoError(t, err)

	again, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}
