package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var flags portfolioFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Project a portfolio's balance distribution",
		Example: `  forecast run --balance 10000 --contribution 500 --months 120 --seed 42
  forecast run --plan household.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}
			ctx, cancel := a.runContext(cmd)
			defer cancel()

			res, err := a.engine.Run(ctx, cfg)
			if err != nil {
				return err
			}
			return a.emit(res, func(w io.Writer) error { return a.renderer.Simulation(w, res) })
		},
	}
	flags.register(cmd)
	return cmd
}
