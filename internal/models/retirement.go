package models

// DefaultSuccessThreshold is the minimum survival probability for a safe withdrawal
const DefaultSuccessThreshold = 0.90

// RetirementParams describes a two-phase accumulate-then-withdraw plan.
// Accumulation.Periods is derived from the ages and ignored on input.
type RetirementParams struct {
	Accumulation          SimulationConfig `json:"accumulation"`
	CurrentAge            int              `json:"current_age"`
	RetirementAge         int              `json:"retirement_age"`
	LifeExpectancyAge     int              `json:"life_expectancy_age"`
	MonthlyExpenses       float64          `json:"monthly_expenses"`
	ExternalMonthlyIncome float64          `json:"external_monthly_income"`
	IncomeSources         []IncomeSource   `json:"income_sources,omitempty"`
	ExpenseSources        []ExpenseSource  `json:"expense_sources,omitempty"`
	InflationAdjusted     bool             `json:"inflation_adjusted"`
	InflationRate         float64          `json:"inflation_rate"` // Annual, e.g. 0.025
	// Withdrawal-phase market assumptions; nil falls back to accumulation.
	WithdrawalReturn     *float64 `json:"withdrawal_return,omitempty"`
	WithdrawalVolatility *float64 `json:"withdrawal_volatility,omitempty"`
	SuccessThreshold     float64  `json:"success_threshold"`
}

// AccumulationMonths returns the length of the saving phase
func (p RetirementParams) AccumulationMonths() int {
	return (p.RetirementAge - p.CurrentAge) * 12
}

// WithdrawalMonths returns the length of the drawdown phase
func (p RetirementParams) WithdrawalMonths() int {
	return (p.LifeExpectancyAge - p.RetirementAge) * 12
}

// AccumulationResult describes the saving phase
type AccumulationResult struct {
	YearsToRetirement  int               `json:"years_to_retirement"`
	FinalBalance       Summary           `json:"final_balance"`
	TotalContributions float64           `json:"total_contributions"`
	Simulation         *SimulationResult `json:"simulation"`
}

// WithdrawalResult describes the drawdown phase
type WithdrawalResult struct {
	YearsInRetirement          int      `json:"years_in_retirement"`
	ProbabilityOfNotRunningOut float64  `json:"probability_of_not_running_out"`
	MedianYearsFundsLast       float64  `json:"median_years_funds_last"`
	MedianMonthsUntilDepletion *float64 `json:"median_months_until_depletion"`
	SafeMonthlyWithdrawal      float64  `json:"safe_monthly_withdrawal"`
	NetMonthlyNeed             float64  `json:"net_monthly_need"`
	// RequiredNestEgg is the present value at retirement of the net need
	// discounted at the withdrawal drift; nil when it is undefined.
	RequiredNestEgg *float64          `json:"required_nest_egg,omitempty"`
	Simulation      *SimulationResult `json:"simulation"`
}

// RetirementResult is the outcome of a full retirement simulation
type RetirementResult struct {
	Accumulation     AccumulationResult `json:"accumulation"`
	Withdrawal       WithdrawalResult   `json:"withdrawal"`
	SuccessThreshold float64            `json:"success_threshold"`
}

// ReturnThreshold is the lowest expected return that keeps the plan above
// its success threshold
type ReturnThreshold struct {
	CurrentValue float64 `json:"current_value"`
	Threshold    float64 `json:"threshold"`
	Margin       float64 `json:"margin"`
	SafetyLevel  string  `json:"safety_level"` // safe, marginal, critical
	Bounded      bool    `json:"bounded"`      // false when even the search floor succeeds
}
