package models

import "time"

// DefaultIterations is the iteration count used when a config leaves it unset
const DefaultIterations = 10000

// SimulationConfig describes one Monte Carlo run over a monthly horizon
type SimulationConfig struct {
	InitialBalance  float64 `json:"initial_balance"`
	MonthlyCashFlow float64 `json:"monthly_cash_flow"` // + contribution, - withdrawal
	Periods         int     `json:"periods"`           // Months
	Iterations      int     `json:"iterations"`
	ExpectedReturn  float64 `json:"expected_return"` // Annual, e.g. 0.07 for 7%
	Volatility      float64 `json:"volatility"`      // Annual standard deviation
	Seed            *int64  `json:"seed,omitempty"`
}

// WithSeed returns a copy of the config pinned to the given seed
func (c SimulationConfig) WithSeed(seed int64) SimulationConfig {
	c.Seed = &seed
	return c
}

// Summary holds distribution statistics for a set of balances.
// StdDev is the population standard deviation.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// PeriodSummary holds the cross-iteration statistics for one month
type PeriodSummary struct {
	Period int     `json:"period"`
	Mean   float64 `json:"mean"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// DistributionBucket is one histogram bar of final balances
type DistributionBucket struct {
	Label      string  `json:"label"`
	Low        float64 `json:"low"`
	High       float64 `json:"high"` // -1 for the open-ended top bucket
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SimulationResult is the immutable output of one engine run
type SimulationResult struct {
	RunID        string               `json:"run_id"`
	Seed         int64                `json:"seed"`
	Iterations   int                  `json:"iterations"`
	Periods      int                  `json:"periods"`
	Summary      Summary              `json:"summary"`
	TimeSeries   []PeriodSummary      `json:"time_series"`
	Distribution []DistributionBucket `json:"distribution"`
	// MedianMaxDrawdown is the largest peak-to-trough fall of the median path
	MedianMaxDrawdown float64   `json:"median_max_drawdown"`
	ComputedAt        time.Time `json:"computed_at"`

	// Per-iteration values, index-aligned, for derived calculators.
	StartingBalances []float64 `json:"-"`
	FinalBalances    []float64 `json:"-"`
	// DepletionMonths holds, per iteration, the 1-based month the balance
	// first hit zero, or 0 if it never did.
	DepletionMonths []int `json:"-"`
}
