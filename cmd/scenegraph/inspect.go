package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meikuraledutech/scenegraph"
	"github.com/spf13/cobra"
)

func inspectCmd(a *app) *cobra.Command {
	var evaluate bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := a.newGraph()
			if err := g.Read(args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if evaluate {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(g.Evaluate())
			}

			fmt.Fprintf(out, "%s %s\n\n", bold.Sprint("scene"), g.Scene())
			for _, p := range g.MetaPairs() {
				fmt.Fprintf(out, "  %s  %v\n", info.Sprintf("%-12s", p.Key), p.Value)
			}
			fmt.Fprintln(out)

			nodes := g.Nodes()
			rows := make([][]string, 0, len(nodes))
			for _, n := range nodes {
				rows = append(rows, []string{
					n.Name,
					n.Type,
					fmt.Sprintf("%g,%g", n.Pos[0], n.Pos[1]),
					connNames(n.Inputs),
					connNames(n.Outputs),
				})
			}
			table(out, []string{"NAME", "TYPE", "POS", "INPUTS", "OUTPUTS"}, rows)
			fmt.Fprintln(out)

			names := make(map[string]string, len(nodes))
			for _, n := range nodes {
				names[n.ID] = n.Name
			}
			edges := g.Edges()
			rows = rows[:0]
			for _, e := range edges {
				rows = append(rows, []string{
					names[e.SrcID] + "." + e.SrcAttr,
					names[e.DestID] + "." + e.DestAttr,
					e.ID,
				})
			}
			table(out, []string{"SOURCE", "DESTINATION", "ID"}, rows)

			good.Fprintf(out, "\n  %d nodes, %d edges\n", len(nodes), len(edges))
			return nil
		},
	}
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "Print every node and edge snapshot as JSON")
	return cmd
}

func connNames(conns []scenegraph.Connection) string {
	names := make([]string, len(conns))
	for i, c := range conns {
		names[i] = c.Name
	}
	return strings.Join(names, ",")
}
