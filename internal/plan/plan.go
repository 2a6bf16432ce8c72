// Package plan parses household plan files. A plan names a portfolio and
// optionally a savings goal, a retirement, and the scenarios to stress it
// with. Plans are YAML, sealed or plain.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"forecast/internal/apperrors"
	"forecast/internal/models"
	"forecast/internal/services/scenario"
)

// DateLayout is the format of dates in plan files
const DateLayout = "2006-01-02"

// Plan is the on-disk description of a household
type Plan struct {
	Name       string      `yaml:"name"`
	Seed       *int64      `yaml:"seed,omitempty"`
	Iterations int         `yaml:"iterations,omitempty"`
	Portfolio  Portfolio   `yaml:"portfolio"`
	Horizon    int         `yaml:"horizon_months,omitempty"`
	Goal       *Goal       `yaml:"goal,omitempty"`
	Retirement *Retirement `yaml:"retirement,omitempty"`
	Scenarios  []string    `yaml:"scenarios,omitempty"`
}

// Portfolio holds the market and saving assumptions shared by every run
type Portfolio struct {
	InitialBalance      float64 `yaml:"initial_balance"`
	MonthlyContribution float64 `yaml:"monthly_contribution"`
	ExpectedReturn      float64 `yaml:"expected_return"`
	Volatility          float64 `yaml:"volatility"`
}

// Goal is a savings target
type Goal struct {
	TargetAmount float64 `yaml:"target_amount"`
	TargetDate   string  `yaml:"target_date"`
}

// Retirement holds the drawdown assumptions
type Retirement struct {
	CurrentAge            int                    `yaml:"current_age"`
	RetirementAge         int                    `yaml:"retirement_age"`
	LifeExpectancyAge     int                    `yaml:"life_expectancy_age"`
	MonthlyExpenses       float64                `yaml:"monthly_expenses"`
	ExternalMonthlyIncome float64                `yaml:"external_monthly_income,omitempty"`
	InflationAdjusted     bool                   `yaml:"inflation_adjusted"`
	InflationRate         float64                `yaml:"inflation_rate,omitempty"`
	WithdrawalReturn      *float64               `yaml:"withdrawal_return,omitempty"`
	WithdrawalVolatility  *float64               `yaml:"withdrawal_volatility,omitempty"`
	SuccessThreshold      float64                `yaml:"success_threshold,omitempty"`
	IncomeSources         []models.IncomeSource  `yaml:"income_sources,omitempty"`
	ExpenseSources        []models.ExpenseSource `yaml:"expense_sources,omitempty"`
}

// Defaults fill fields a plan leaves unset
type Defaults struct {
	Iterations       int
	SuccessThreshold float64
}

// Parse decodes a plan and checks it. Unknown keys are rejected.
func Parse(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewConfigError("plan", "file is empty")
		}
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseBytes decodes a plan held in memory
func ParseBytes(data []byte) (*Plan, error) {
	return Parse(bytes.NewReader(data))
}

// Marshal encodes a plan as YAML
func Marshal(p *Plan) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the parts of a plan the engine cannot check for itself
func (p *Plan) Validate() error {
	if p.Name == "" {
		return apperrors.NewConfigError("name", "is required")
	}
	if p.Goal != nil {
		if _, err := p.Goal.Date(); err != nil {
			return err
		}
	}
	for _, id := range p.Scenarios {
		if _, err := scenario.Lookup(id); err != nil {
			return err
		}
	}
	return nil
}

// Date parses the goal's target date
func (g *Goal) Date() (time.Time, error) {
	d, err := time.Parse(DateLayout, g.TargetDate)
	if err != nil {
		return time.Time{}, apperrors.NewConfigError("goal.target_date", "want YYYY-MM-DD, got %q", g.TargetDate)
	}
	return d, nil
}

// SimulationConfig returns the config for a plain projection over the
// plan's horizon
func (p *Plan) SimulationConfig(d Defaults) models.SimulationConfig {
	iterations := p.Iterations
	if iterations == 0 {
		iterations = d.Iterations
	}
	return models.SimulationConfig{
		InitialBalance:  p.Portfolio.InitialBalance,
		MonthlyCashFlow: p.Portfolio.MonthlyContribution,
		Periods:         p.Horizon,
		Iterations:      iterations,
		ExpectedReturn:  p.Portfolio.ExpectedReturn,
		Volatility:      p.Portfolio.Volatility,
		Seed:            p.Seed,
	}
}

// GoalRequest returns the goal question the plan asks. Periods is left
// zero so the calculator derives it from the target date.
func (p *Plan) GoalRequest(d Defaults) (models.GoalRequest, error) {
	if p.Goal == nil {
		return models.GoalRequest{}, apperrors.NewConfigError("goal", "plan %s has no goal section", p.Name)
	}
	date, err := p.Goal.Date()
	if err != nil {
		return models.GoalRequest{}, err
	}
	cfg := p.SimulationConfig(d)
	cfg.Periods = 0
	return models.GoalRequest{
		Config:       cfg,
		TargetAmount: p.Goal.TargetAmount,
		TargetDate:   date,
	}, nil
}

// RetirementParams returns the plan's retirement inputs
func (p *Plan) RetirementParams(d Defaults) (models.RetirementParams, error) {
	r := p.Retirement
	if r == nil {
		return models.RetirementParams{}, apperrors.NewConfigError("retirement", "plan %s has no retirement section", p.Name)
	}
	threshold := r.SuccessThreshold
	if threshold == 0 {
		threshold = d.SuccessThreshold
	}
	return models.RetirementParams{
		Accumulation:          p.SimulationConfig(d),
		CurrentAge:            r.CurrentAge,
		RetirementAge:         r.RetirementAge,
		LifeExpectancyAge:     r.LifeExpectancyAge,
		MonthlyExpenses:       r.MonthlyExpenses,
		ExternalMonthlyIncome: r.ExternalMonthlyIncome,
		IncomeSources:         r.IncomeSources,
		ExpenseSources:        r.ExpenseSources,
		InflationAdjusted:     r.InflationAdjusted,
		InflationRate:         r.InflationRate,
		WithdrawalReturn:      r.WithdrawalReturn,
		WithdrawalVolatility:  r.WithdrawalVolatility,
		SuccessThreshold:      threshold,
	}, nil
}
