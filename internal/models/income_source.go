package models

import "math"

// IncomeSource is a recurring payment received during retirement, such as a
// pension or social security. Months count from the first retirement month.
type IncomeSource struct {
	Name       string  `json:"name" yaml:"name"`
	Amount     float64 `json:"amount" yaml:"amount"`           // Monthly amount
	StartMonth int     `json:"start_month" yaml:"start_month"` // 0 = immediate
	EndMonth   *int    `json:"end_month,omitempty" yaml:"end_month,omitempty"`
	COLARate   float64 `json:"cola_rate" yaml:"cola_rate"` // Annual step-up, e.g. 0.02
}

// IsActive returns whether the source pays in the given month
func (is IncomeSource) IsActive(month int) bool {
	if month < is.StartMonth {
		return false
	}
	return is.EndMonth == nil || month < *is.EndMonth
}

// AmountAt returns the payment for a month, stepping up by COLA each full year
func (is IncomeSource) AmountAt(month int) float64 {
	if !is.IsActive(month) {
		return 0
	}
	years := (month - is.StartMonth) / 12
	if is.COLARate != 0 && years > 0 {
		return is.Amount * math.Pow(1+is.COLARate, float64(years))
	}
	return is.Amount
}

// ExpenseSource is a planned retirement expense on top of the base budget
type ExpenseSource struct {
	Name      string  `json:"name" yaml:"name"`
	Amount    float64 `json:"amount" yaml:"amount"` // Monthly amount
	StartYear int     `json:"start_year" yaml:"start_year"`
	EndYear   int     `json:"end_year" yaml:"end_year"` // 0 = until the horizon
	Inflation bool    `json:"inflation" yaml:"inflation"`
}

// AmountAt returns the expense for a month, inflating per full year active
func (es ExpenseSource) AmountAt(month int, annualInflation float64) float64 {
	if es.Amount <= 0 {
		return 0
	}
	start := es.StartYear * 12
	if month < start || (es.EndYear > 0 && month >= es.EndYear*12) {
		return 0
	}
	if es.Inflation && annualInflation != 0 {
		return es.Amount * math.Pow(1+annualInflation, float64((month-start)/12))
	}
	return es.Amount
}

// TotalIncome sums every source active in the month
func TotalIncome(sources []IncomeSource, month int) float64 {
	total := 0.0
	for _, s := range sources {
		total += s.AmountAt(month)
	}
	return total
}

// TotalExpenses sums every planned expense active in the month
func TotalExpenses(sources []ExpenseSource, month int, annualInflation float64) float64 {
	total := 0.0
	for _, s := range sources {
		total += s.AmountAt(month, annualInflation)
	}
	return total
}
