package main

import (
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"forecast/internal/plan"
	"forecast/internal/services/goal"
)

func newGoalCmd(a *app) *cobra.Command {
	var (
		flags  portfolioFlags
		target float64
		date   string
	)
	cmd := &cobra.Command{
		Use:     "goal",
		Short:   "Estimate the chance of reaching a savings target",
		Example: `  forecast goal --balance 10000 --contribution 500 --target 100000 --date 2035-06-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}
			// The horizon comes from the target date unless set explicitly.
			if !cmd.Flags().Changed("months") {
				cfg.Periods = 0
			}

			if p != nil && p.Goal != nil {
				if !cmd.Flags().Changed("target") {
					target = p.Goal.TargetAmount
				}
				if !cmd.Flags().Changed("date") {
					date = p.Goal.TargetDate
				}
			}
			if date == "" {
				return errors.New("a target date is required: --date YYYY-MM-DD")
			}
			targetDate, err := time.Parse(plan.DateLayout, date)
			if err != nil {
				return err
			}

			ctx, cancel := a.runContext(cmd)
			defer cancel()

			calc := goal.NewCalculator(a.engine, goal.WithLogger(a.logger))
			res, err := calc.Calculate(ctx, cfg, target, targetDate)
			if err != nil {
				return err
			}
			return a.emit(res, func(w io.Writer) error { return a.renderer.Goal(w, res) })
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&target, "target", 0, "Target balance")
	cmd.Flags().StringVar(&date, "date", "", "Target date, YYYY-MM-DD")
	return cmd
}
