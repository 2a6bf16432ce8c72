package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"forecast/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// No config or engine needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if a.jsonOut {
				return a.emit(info, nil)
			}
			fmt.Fprintln(a.out, info.String())
			if warning := info.Check(); warning != "" {
				fmt.Fprintln(a.errOut, warning)
			}
			return nil
		},
	}
}
