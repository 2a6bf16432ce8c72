package main

import (
	"io"

	"github.com/spf13/cobra"

	"forecast/internal/models"
	"forecast/internal/services/scenario"
)

func newScenarioCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Stress-test a portfolio against historical market events",
	}
	cmd.AddCommand(newScenarioListCmd(a), newScenarioCompareCmd(a))
	return cmd
}

func newScenarioListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := scenario.Catalog()
			return a.emit(catalog, func(w io.Writer) error { return a.renderer.Catalog(w, catalog) })
		},
	}
}

func newScenarioCompareCmd(a *app) *cobra.Command {
	var flags portfolioFlags
	cmd := &cobra.Command{
		Use:   "compare [scenario-id...]",
		Short: "Compare a baseline run with shocked runs",
		Long:  "Compare a baseline run with shocked runs. With no IDs, the plan's scenarios are used, or every built-in scenario.",
		Example: `  forecast scenario compare covid_crash_2020 --balance 100000 --contribution 500 --months 240
  forecast scenario compare --plan household.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}
			ids := args
			if len(ids) == 0 && p != nil {
				ids = p.Scenarios
			}

			ctx, cancel := a.runContext(cmd)
			defer cancel()

			st := scenario.NewStressTester(a.engine,
				scenario.WithLogger(a.logger),
				scenario.WithThresholds(a.cfg.Scenario.MaterialImpactThreshold, a.cfg.Scenario.RecoveryTolerance),
			)

			var results []*models.ScenarioComparisonResult
			if len(ids) == 0 {
				if results, err = st.CompareAll(ctx, cfg); err != nil {
					return err
				}
			} else {
				// Pin one seed so every comparison shares the baseline draws.
				if cfg.Seed == nil {
					cfg = cfg.WithSeed(a.clockSeed())
				}
				for _, id := range ids {
					res, err := st.Compare(ctx, cfg, id)
					if err != nil {
						return err
					}
					results = append(results, res)
				}
			}
			return a.emit(results, func(w io.Writer) error { return a.renderer.Scenarios(w, results) })
		},
	}
	flags.register(cmd)
	return cmd
}
