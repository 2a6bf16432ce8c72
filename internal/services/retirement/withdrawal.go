package retirement

import (
	"context"
	"math"

	"forecast/internal/services/simulation"
)

const (
	withdrawalPrecision = 1.0 // Dollars
	maxBracketDoublings = 60
)

// withdrawalSuccess returns the survival rate when every path draws amount
// per month (in today's money) from its accumulation outcome. The seed and
// starting balances are fixed, so the rate never rises with amount.
func (s *Simulator) withdrawalSuccess(ctx context.Context, pl *plan, starts []float64, amount float64) (float64, error) {
	finals, err := s.engine.FinalBalances(ctx, pl.withdrawal, simulation.PathOptions{
		StartingBalances: starts,
		CashFlow:         fixedWithdrawalFlow(pl.params, amount),
		Kind:             "safe_withdrawal",
	})
	if err != nil {
		return 0, err
	}
	return successRate(finals), nil
}

// safeWithdrawal finds the largest monthly withdrawal whose survival rate
// stays at or above the plan's success threshold, by bisection
func (s *Simulator) safeWithdrawal(ctx context.Context, pl *plan, starts []float64) (float64, error) {
	threshold := pl.params.SuccessThreshold

	ok, err := s.withdrawalSuccess(ctx, pl, starts, 0)
	if err != nil {
		return 0, err
	}
	if ok < threshold {
		return 0, nil
	}

	low := 0.0
	high := max(1, 2*medianOf(starts)/float64(pl.withdrawal.Periods))
	for i := 0; ; i++ {
		rate, err := s.withdrawalSuccess(ctx, pl, starts, high)
		if err != nil {
			return 0, err
		}
		if rate < threshold {
			break
		}
		if i == maxBracketDoublings {
			return high, nil
		}
		low, high = high, high*2
	}

	for high-low > withdrawalPrecision {
		mid := (low + high) / 2
		rate, err := s.withdrawalSuccess(ctx, pl, starts, mid)
		if err != nil {
			return 0, err
		}
		if rate >= threshold {
			low = mid
		} else {
			high = mid
		}
	}

	return math.Floor(low*100) / 100, nil
}
