package main

import (
	"github.com/spf13/cobra"

	"forecast/internal/models"
	"forecast/internal/plan"
)

// portfolioFlags are the market and saving inputs shared by the
// simulation commands. Flags the user sets override the plan file.
type portfolioFlags struct {
	plan         string
	balance      float64
	contribution float64
	ret          float64
	volatility   float64
	months       int
	iterations   int
	seed         int64
}

func (f *portfolioFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.plan, "plan", "p", "", "Plan file, absolute or relative to the plans dir")
	fs.Float64Var(&f.balance, "balance", 0, "Starting balance")
	fs.Float64Var(&f.contribution, "contribution", 0, "Monthly contribution, negative for withdrawals")
	fs.Float64Var(&f.ret, "return", 0.07, "Expected annual return")
	fs.Float64Var(&f.volatility, "volatility", 0.15, "Annual volatility")
	fs.IntVar(&f.months, "months", 120, "Horizon in months")
	fs.IntVar(&f.iterations, "iterations", 0, "Monte Carlo paths (default from config)")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed for a reproducible run")
}

// resolve merges the plan, if any, with the flags the user set
func (f *portfolioFlags) resolve(cmd *cobra.Command, a *app) (models.SimulationConfig, *plan.Plan, error) {
	changed := cmd.Flags().Changed

	var p *plan.Plan
	var cfg models.SimulationConfig
	if f.plan != "" {
		var err error
		if p, err = a.loadPlan(f.plan); err != nil {
			return cfg, nil, err
		}
		cfg = p.SimulationConfig(a.defaults())
		if p.Horizon == 0 && !changed("months") {
			cfg.Periods = f.months
		}
	} else {
		cfg = models.SimulationConfig{
			InitialBalance:  f.balance,
			MonthlyCashFlow: f.contribution,
			Periods:         f.months,
			Iterations:      a.cfg.Simulation.Iterations,
			ExpectedReturn:  f.ret,
			Volatility:      f.volatility,
		}
	}

	if changed("balance") {
		cfg.InitialBalance = f.balance
	}
	if changed("contribution") {
		cfg.MonthlyCashFlow = f.contribution
	}
	if changed("return") {
		cfg.ExpectedReturn = f.ret
	}
	if changed("volatility") {
		cfg.Volatility = f.volatility
	}
	if changed("months") {
		cfg.Periods = f.months
	}
	if changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if changed("seed") {
		cfg = cfg.WithSeed(f.seed)
	}
	return cfg, p, nil
}
