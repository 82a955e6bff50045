package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func scenesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "Store and fetch scenes in the configured database",
	}
	cmd.AddCommand(
		scenesListCmd(a),
		scenesSaveCmd(a),
		scenesLoadCmd(a),
		scenesDeleteCmd(a),
	)
	return cmd
}

func scenesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.requireStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			ids, err := store.ListScenes(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				subtle.Fprintln(cmd.OutOrStdout(), "  no scenes stored")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
			}
			return nil
		},
	}
}

func scenesSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <file> <scene-id>",
		Short: "Read a scene file and store it under scene-id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.requireStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			g := a.newGraph()
			if err := g.Read(args[0]); err != nil {
				return err
			}
			if err := g.Save(cmd.Context(), store, args[1]); err != nil {
				return err
			}
			good.Fprintf(cmd.OutOrStdout(), "  saved %s as %s\n", args[0], args[1])
			return nil
		},
	}
}

func scenesLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <scene-id> <file>",
		Short: "Fetch a stored scene and write it to file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.requireStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			g := a.newGraph()
			if err := g.Load(cmd.Context(), store, args[0]); err != nil {
				return err
			}
			if err := g.Write(args[1]); err != nil {
				return err
			}
			good.Fprintf(cmd.OutOrStdout(), "  wrote %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func scenesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scene-id>",
		Short: "Delete a stored scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.requireStore(cmd.Context())
			defer closeStore()
			if err != nil {
				return err
			}
			return store.DeleteDocument(cmd.Context(), args[0])
		},
	}
}
