package stats

import (
	"slices"

	"forecast/internal/apperrors"
)

// SharpeRatio returns the excess mean return per unit of population standard
// deviation. Returns and riskFree must share a periodicity.
func SharpeRatio(returns []float64, riskFree float64) (float64, error) {
	sd := StdDev(returns)
	if sd == 0 {
		return 0, apperrors.NewComputationError("sharpe_ratio", "returns have zero standard deviation")
	}
	return (Mean(returns) - riskFree) / sd, nil
}

// ValueAtRisk returns the loss magnitude not exceeded with the given
// confidence (e.g. 0.95), from the empirical return distribution. A
// distribution with no losses at that level yields 0.
func ValueAtRisk(returns []float64, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, apperrors.NewComputationError("value_at_risk", "confidence must be in (0, 1), got %g", confidence)
	}
	q := Percentile(returns, (1-confidence)*100)
	return max(0, -q), nil
}

// ExpectedShortfallCVaR returns the mean loss of the returns at or beyond
// the VaR quantile.
func ExpectedShortfallCVaR(returns []float64, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, apperrors.NewComputationError("cvar", "confidence must be in (0, 1), got %g", confidence)
	}
	sorted := slices.Clone(returns)
	slices.Sort(sorted)
	q := PercentileSorted(sorted, (1-confidence)*100)
	var tail []float64
	for _, r := range sorted {
		if r > q {
			break
		}
		tail = append(tail, r)
	}
	if len(tail) == 0 {
		tail = sorted[:1]
	}
	return max(0, -Mean(tail)), nil
}

// MaxDrawdown returns the largest fractional fall from a running peak, in
// [0, 1]. Values at or below zero before any positive peak are ignored.
func MaxDrawdown(values []float64) float64 {
	peak, worst := 0.0, 0.0
	for _, v := range values {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// PeriodReturns converts a value series into simple period-over-period
// returns, skipping periods that start from zero.
func PeriodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}
