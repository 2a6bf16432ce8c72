package stats

import (
	"math"

	"forecast/internal/apperrors"
)

// AnnualToMonthlyReturn converts an annual rate to its compounding-equivalent
// monthly rate: (1+a)^(1/12) - 1
func AnnualToMonthlyReturn(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12) - 1
}

// MonthlyToAnnualReturn converts a monthly rate to an annual one: (1+m)^12 - 1
func MonthlyToAnnualReturn(monthly float64) float64 {
	return math.Pow(1+monthly, 12) - 1
}

// AnnualToMonthlyVolatility scales annual volatility by the square root of time
func AnnualToMonthlyVolatility(annual float64) float64 {
	return annual / math.Sqrt(12)
}

// CAGR returns the compound annual growth rate between two values
func CAGR(begin, end, years float64) (float64, error) {
	if years <= 0 {
		return 0, apperrors.NewComputationError("cagr", "years must be positive, got %g", years)
	}
	if begin <= 0 {
		return 0, apperrors.NewComputationError("cagr", "beginning value must be positive, got %g", begin)
	}
	if end < 0 {
		return 0, apperrors.NewComputationError("cagr", "ending value must not be negative, got %g", end)
	}
	return math.Pow(end/begin, 1/years) - 1, nil
}

// FutureValue returns the value after periods of compounding at rate with a
// payment added at the end of every period.
// FV = PV(1+r)^n + PMT((1+r)^n - 1)/r
func FutureValue(presentValue, rate float64, periods int, payment float64) (float64, error) {
	if periods < 0 {
		return 0, apperrors.NewComputationError("future_value", "periods must not be negative, got %d", periods)
	}
	if rate <= -1 {
		return 0, apperrors.NewComputationError("future_value", "rate must exceed -100%%, got %g", rate)
	}
	n := float64(periods)
	if rate == 0 {
		return presentValue + payment*n, nil
	}
	growth := math.Pow(1+rate, n)
	return presentValue*growth + payment*(growth-1)/rate, nil
}

// PresentValue discounts a future amount: PV = FV / (1+r)^n
func PresentValue(futureValue, rate float64, periods int) (float64, error) {
	if periods < 0 {
		return 0, apperrors.NewComputationError("present_value", "periods must not be negative, got %d", periods)
	}
	if rate <= -1 {
		return 0, apperrors.NewComputationError("present_value", "rate must exceed -100%%, got %g", rate)
	}
	return futureValue / math.Pow(1+rate, float64(periods)), nil
}

// AnnuityPayment returns the level end-of-period payment that grows
// presentValue into futureValue over periods at rate.
func AnnuityPayment(presentValue, futureValue, rate float64, periods int) (float64, error) {
	if periods <= 0 {
		return 0, apperrors.NewComputationError("annuity_payment", "periods must be positive, got %d", periods)
	}
	if rate <= -1 {
		return 0, apperrors.NewComputationError("annuity_payment", "rate must exceed -100%%, got %g", rate)
	}
	n := float64(periods)
	if rate == 0 {
		return (futureValue - presentValue) / n, nil
	}
	growth := math.Pow(1+rate, n)
	return (futureValue - presentValue*growth) * rate / (growth - 1), nil
}

// GrowingAnnuityPresentValue returns the present value of periods payments
// that start at payment and grow by growth each period, discounted at rate.
// Equal rate and growth is rejected rather than special-cased.
func GrowingAnnuityPresentValue(payment, rate, growth float64, periods int) (float64, error) {
	if periods <= 0 {
		return 0, apperrors.NewComputationError("growing_annuity_pv", "periods must be positive, got %d", periods)
	}
	if rate <= -1 {
		return 0, apperrors.NewComputationError("growing_annuity_pv", "rate must exceed -100%%, got %g", rate)
	}
	if rate == growth {
		return 0, apperrors.NewComputationError("growing_annuity_pv", "discount rate equals growth rate (%g)", rate)
	}
	factor := math.Pow((1+growth)/(1+rate), float64(periods))
	return payment * (1 - factor) / (rate - growth), nil
}

// ImpliedMonthlyRate finds the monthly rate r for which
// FutureValue(presentValue, r, periods, payment) equals target, by bisection
// over [low, high]. The future value must be increasing in r on that range,
// which holds for non-negative presentValue and payment.
func ImpliedMonthlyRate(presentValue, payment, target float64, periods int, low, high float64) (float64, error) {
	if periods <= 0 {
		return 0, apperrors.NewComputationError("implied_rate", "periods must be positive, got %d", periods)
	}
	f := func(r float64) float64 {
		fv, _ := FutureValue(presentValue, r, periods, payment)
		return fv - target
	}
	fLow, fHigh := f(low), f(high)
	if fLow > 0 || fHigh < 0 {
		return 0, apperrors.NewComputationError("implied_rate", "target %g not bracketed by rates [%g, %g]", target, low, high)
	}
	for i := 0; i < 200 && high-low > 1e-12; i++ {
		mid := (low + high) / 2
		if f(mid) < 0 {
			low = mid
		} else {
			high = mid
		}
	}
	return (low + high) / 2, nil
}
