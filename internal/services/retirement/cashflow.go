package retirement

import (
	"math"

	"forecast/internal/models"
	"forecast/internal/services/simulation"
)

// inflationFactor returns the cumulative monthly-compounded inflation
// multiplier for a zero-based retirement month
func inflationFactor(p models.RetirementParams, month int) float64 {
	if !p.InflationAdjusted || p.InflationRate == 0 {
		return 1
	}
	return math.Pow(1+p.InflationRate, float64(month)/12)
}

func scheduleInflation(p models.RetirementParams) float64 {
	if p.InflationAdjusted {
		return p.InflationRate
	}
	return 0
}

// netNeed returns expenses minus income for a retirement month, before
// drawing on the portfolio. A negative value is a surplus.
func netNeed(p models.RetirementParams, month int) float64 {
	base := (p.MonthlyExpenses - p.ExternalMonthlyIncome) * inflationFactor(p, month)
	extra := models.TotalExpenses(p.ExpenseSources, month, scheduleInflation(p))
	return base + extra - models.TotalIncome(p.IncomeSources, month)
}

// withdrawalFlow is the portfolio cash flow of the withdrawal phase
func withdrawalFlow(p models.RetirementParams) simulation.CashFlowFunc {
	return func(month int) float64 {
		return -netNeed(p, month)
	}
}

// fixedWithdrawalFlow draws amount in today's money each month, inflated
// like the expenses it funds
func fixedWithdrawalFlow(p models.RetirementParams, amount float64) simulation.CashFlowFunc {
	return func(month int) float64 {
		return -amount * inflationFactor(p, month)
	}
}

// monthlyInflation converts the annual inflation rate used for growth of
// the net need
func monthlyInflation(p models.RetirementParams) float64 {
	if !p.InflationAdjusted {
		return 0
	}
	return math.Pow(1+p.InflationRate, 1.0/12) - 1
}
