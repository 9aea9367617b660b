package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/ruea-filter/pkg/schema"
)

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the known schema families",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"id", "aliases", "columns", "numeric", "files", "description"})
			for _, f := range schema.All() {
				t.AppendRow(table.Row{
					f.ID,
					strings.Join(f.Aliases, ", "),
					len(f.Columns),
					strings.Join(f.NumericColumns(), ", "),
					strings.Join(f.Globs, ", "),
					f.Description,
				})
			}
			t.Render()
			return nil
		},
	}
}
