package main

import (
	"github.com/spf13/cobra"
)

func schemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the scene storage schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create the scene tables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, closeStore, err := a.requireStore(cmd.Context())
				defer closeStore()
				if err != nil {
					return err
				}
				if err := store.CreateSchema(cmd.Context()); err != nil {
					return err
				}
				good.Fprintln(cmd.OutOrStdout(), "  schema created")
				return nil
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop the scene tables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, closeStore, err := a.requireStore(cmd.Context())
				defer closeStore()
				if err != nil {
					return err
				}
				if err := store.DropSchema(cmd.Context()); err != nil {
					return err
				}
				good.Fprintln(cmd.OutOrStdout(), "  schema dropped")
				return nil
			},
		},
	)
	return cmd
}
