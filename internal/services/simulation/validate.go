package simulation

import (
	"math"

	"forecast/internal/apperrors"
	"forecast/internal/models"
)

// ValidateConfig rejects configs that cannot be simulated
func ValidateConfig(cfg models.SimulationConfig) error {
	switch {
	case cfg.Iterations < 1:
		return apperrors.NewConfigError("iterations", "must be at least 1, got %d", cfg.Iterations)
	case cfg.Periods < 1:
		return apperrors.NewConfigError("periods", "must be at least 1, got %d", cfg.Periods)
	case !isFinite(cfg.Volatility) || cfg.Volatility < 0:
		return apperrors.NewConfigError("volatility", "must be a finite value >= 0, got %g", cfg.Volatility)
	case !isFinite(cfg.InitialBalance) || cfg.InitialBalance < 0:
		return apperrors.NewConfigError("initial_balance", "must be a finite value >= 0, got %g", cfg.InitialBalance)
	case !isFinite(cfg.MonthlyCashFlow):
		return apperrors.NewConfigError("monthly_cash_flow", "must be finite, got %g", cfg.MonthlyCashFlow)
	case !isFinite(cfg.ExpectedReturn) || cfg.ExpectedReturn <= -1:
		return apperrors.NewConfigError("expected_return", "must be a finite value above -1, got %g", cfg.ExpectedReturn)
	}
	return nil
}

func validateStartingBalances(starts []float64, iterations int) error {
	if starts == nil {
		return nil
	}
	if len(starts) != iterations {
		return apperrors.NewConfigError("starting_balances", "got %d balances for %d iterations", len(starts), iterations)
	}
	for i, b := range starts {
		if !isFinite(b) || b < 0 {
			return apperrors.NewConfigError("starting_balances", "balance %d is %g", i, b)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
