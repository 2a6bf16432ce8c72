package simulation

import (
	"forecast/internal/services/stats"
)

// NormalSource supplies standard normal draws. *rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// CashFlowFunc returns the contribution (positive) or withdrawal (negative)
// applied at the end of a zero-based month.
type CashFlowFunc func(period int) float64

// ConstantFlow returns a CashFlowFunc paying the same amount every month
func ConstantFlow(amount float64) CashFlowFunc {
	return func(int) float64 { return amount }
}

// ReturnFunc overrides the monthly return for a period. ok is false when
// the stochastic return should be used.
type ReturnFunc func(period int) (r float64, ok bool)

// PathModel holds the monthly parameters of the discrete GBM approximation
type PathModel struct {
	MonthlyDrift      float64
	MonthlyVolatility float64
}

// NewPathModel converts annual assumptions to monthly ones
func NewPathModel(expectedReturn, volatility float64) PathModel {
	return PathModel{
		MonthlyDrift:      stats.AnnualToMonthlyReturn(expectedReturn),
		MonthlyVolatility: stats.AnnualToMonthlyVolatility(volatility),
	}
}

// Simulate fills row with one trajectory of month-end balances starting from
// start. flows[t] is the cash flow of month t and len(flows) must equal
// len(row). Each month draws exactly one Z from src, even when override
// replaces the return, so paired runs stay aligned. It returns the 1-based
// month in which the balance first reached zero, or 0.
func (m PathModel) Simulate(row []float64, start float64, flows []float64, src NormalSource, override ReturnFunc) int {
	balance := start
	depleted := 0
	for t := range row {
		z := src.NormFloat64()
		r := m.MonthlyDrift + m.MonthlyVolatility*z
		if override != nil {
			if shocked, ok := override(t); ok {
				r = shocked
			}
		}
		balance = max(0, balance*(1+r)+flows[t])
		row[t] = balance
		if balance == 0 && depleted == 0 {
			depleted = t + 1
		}
	}
	return depleted
}

// SimulateDeterministic fills row with the zero-volatility trajectory
func (m PathModel) SimulateDeterministic(row []float64, start float64, flows []float64, override ReturnFunc) int {
	return m.Simulate(row, start, flows, zeroSource{}, override)
}

type zeroSource struct{}

func (zeroSource) NormFloat64() float64 { return 0 }
