package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage plan files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List plans in the plans dir",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := a.store.List()
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.emit(names, nil)
				}
				for _, name := range names {
					fmt.Fprintln(a.out, name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "encrypt <file>",
			Short: "Seal a plan with a passphrase",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.unlock(); err != nil {
					return err
				}
				path, err := a.store.EncryptFile(args[0])
				if err != nil {
					return err
				}
				a.logger.Info().Str("path", path).Msg("plan encrypted")
				fmt.Fprintln(a.out, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "decrypt <file>",
			Short: "Remove a plan's passphrase",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.unlock(); err != nil {
					return err
				}
				path, err := a.store.DecryptFile(args[0])
				if err != nil {
					return err
				}
				a.logger.Info().Str("path", path).Msg("plan decrypted")
				fmt.Fprintln(a.out, path)
				return nil
			},
		},
	)
	return cmd
}
