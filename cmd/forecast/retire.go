package main

import (
	"io"

	"github.com/spf13/cobra"

	"forecast/internal/models"
	"forecast/internal/services/retirement"
)

type retireFlags struct {
	currentAge           int
	retirementAge        int
	lifeExpectancy       int
	expenses             float64
	income               float64
	inflation            float64
	withdrawalReturn     float64
	withdrawalVolatility float64
	threshold            float64
	sensitivity          bool
}

func newRetireCmd(a *app) *cobra.Command {
	var (
		flags portfolioFlags
		rf    retireFlags
	)
	cmd := &cobra.Command{
		Use:   "retire",
		Short: "Simulate saving until retirement and drawing down after it",
		Example: `  forecast retire --balance 250000 --contribution 1500 --current-age 45 --retirement-age 65 --expenses 5000
  forecast retire --plan household.yaml --sensitivity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			var params models.RetirementParams
			if p != nil && p.Retirement != nil {
				if params, err = p.RetirementParams(a.defaults()); err != nil {
					return err
				}
				params.Accumulation = cfg
			} else {
				params = models.RetirementParams{
					Accumulation:     cfg,
					SuccessThreshold: a.cfg.Retirement.SuccessThreshold,
				}
				rf.applyAll(&params)
			}
			rf.applyChanged(cmd, &params)

			ctx, cancel := a.runContext(cmd)
			defer cancel()

			sim := retirement.NewSimulator(a.engine, retirement.WithLogger(a.logger))
			res, err := sim.Simulate(ctx, params)
			if err != nil {
				return err
			}

			var threshold *models.ReturnThreshold
			if rf.sensitivity {
				if threshold, err = sim.MinimumReturnForThreshold(ctx, params); err != nil {
					return err
				}
			}

			out := struct {
				*models.RetirementResult
				Sensitivity *models.ReturnThreshold `json:"sensitivity,omitempty"`
			}{res, threshold}
			return a.emit(out, func(w io.Writer) error { return a.renderer.Retirement(w, res, threshold) })
		},
	}
	flags.register(cmd)

	fs := cmd.Flags()
	fs.IntVar(&rf.currentAge, "current-age", 40, "Current age")
	fs.IntVar(&rf.retirementAge, "retirement-age", 65, "Retirement age")
	fs.IntVar(&rf.lifeExpectancy, "life-expectancy", 90, "Planning horizon age")
	fs.Float64Var(&rf.expenses, "expenses", 0, "Monthly expenses in retirement, in today's money")
	fs.Float64Var(&rf.income, "income", 0, "Other monthly income in retirement")
	fs.Float64Var(&rf.inflation, "inflation", 0, "Annual inflation applied to expenses; 0 disables")
	fs.Float64Var(&rf.withdrawalReturn, "withdrawal-return", 0, "Expected annual return after retirement (default: --return)")
	fs.Float64Var(&rf.withdrawalVolatility, "withdrawal-volatility", 0, "Annual volatility after retirement (default: --volatility)")
	fs.Float64Var(&rf.threshold, "threshold", 0, "Success probability a safe withdrawal must reach (default from config)")
	fs.BoolVar(&rf.sensitivity, "sensitivity", false, "Also search for the lowest expected return that meets the threshold")
	return cmd
}

// applyAll fills params from flags when there is no plan
func (rf *retireFlags) applyAll(p *models.RetirementParams) {
	p.CurrentAge = rf.currentAge
	p.RetirementAge = rf.retirementAge
	p.LifeExpectancyAge = rf.lifeExpectancy
	p.MonthlyExpenses = rf.expenses
	p.ExternalMonthlyIncome = rf.income
	p.InflationRate = rf.inflation
	p.InflationAdjusted = rf.inflation != 0
}

// applyChanged overrides params with the flags the user set
func (rf *retireFlags) applyChanged(cmd *cobra.Command, p *models.RetirementParams) {
	changed := cmd.Flags().Changed
	if changed("current-age") {
		p.CurrentAge = rf.currentAge
	}
	if changed("retirement-age") {
		p.RetirementAge = rf.retirementAge
	}
	if changed("life-expectancy") {
		p.LifeExpectancyAge = rf.lifeExpectancy
	}
	if changed("expenses") {
		p.MonthlyExpenses = rf.expenses
	}
	if changed("income") {
		p.ExternalMonthlyIncome = rf.income
	}
	if changed("inflation") {
		p.InflationRate = rf.inflation
		p.InflationAdjusted = rf.inflation != 0
	}
	if changed("withdrawal-return") {
		v := rf.withdrawalReturn
		p.WithdrawalReturn = &v
	}
	if changed("withdrawal-volatility") {
		v := rf.withdrawalVolatility
		p.WithdrawalVolatility = &v
	}
	if changed("threshold") {
		p.SuccessThreshold = rf.threshold
	}
}
