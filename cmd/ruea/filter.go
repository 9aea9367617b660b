// CLAUDE:SUMMARY CLI subcommand that filters declaration files to one region and prints the audit summary.
package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/ruea-filter/pkg/pipeline"
	"github.com/hazyhaar/ruea-filter/pkg/region"
	"github.com/hazyhaar/ruea-filter/pkg/schema"
	"github.com/hazyhaar/ruea-filter/pkg/sniff"
)

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter declaration files to one region",
		Long: `Filter every discovered declaration file to the rows of one region.

Writes <prefix><file>_<suffix>.csv and .xlsx per input, one consolidated
table per schema family, the audit log resumen_filtrado_region.csv and the
run manifest run.yaml.

Examples:
  # Metropolitana de Santiago, all families
  ruea filter --root .

  # Only the 2023 file, another region
  ruea filter --only 2023 --region "Valparaíso"`,
		RunE: runFilter,
	}
	f := cmd.Flags()
	f.String("region", "", "target region (default \"Metropolitana de Santiago\")")
	f.String("out-prefix", "", "prefix for per-file output names")
	f.String("aliases-file", "", "YAML file with extra region aliases")
	f.Int("workers", 1, "files processed concurrently")
	return cmd
}

// selectFamilies resolves the "only" setting. Empty selects every family.
func selectFamilies(only string) ([]*schema.Family, error) {
	if only == "" {
		return schema.All(), nil
	}
	f, err := schema.Get(only)
	if err != nil {
		return nil, err
	}
	return []*schema.Family{f}, nil
}

func runFilter(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	families, err := selectFamilies(cfg.Only)
	if err != nil {
		return err
	}
	regions, err := region.LoadTable(cfg.AliasesFile)
	if err != nil {
		return err
	}
	diag, err := sniff.LoadDiagnostics(cfg.DiagnosticFile)
	if err != nil {
		return err
	}

	rep, err := pipeline.Run(cmd.Context(), pipeline.Options{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Region:      cfg.Region,
		Regions:     regions,
		Families:    families,
		OutPrefix:   cfg.OutPrefix,
		Diagnostics: diag,
		Workers:     cfg.Workers,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	renderReport(cmd.OutOrStdout(), rep)
	return nil
}

func renderReport(w io.Writer, rep *pipeline.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"file", "family", "encoding", "sep", "rows in", "rows " + rep.Suffix, "status"})
	for _, r := range rep.Results {
		t.AppendRow(table.Row{r.File, r.Family, r.Encoding, r.Delimiter, count(r.InputRows), count(r.OutputRows), r.Status()})
	}
	t.Render()

	for _, c := range rep.Consolidated {
		_, _ = fmt.Fprintf(w, "consolidated %s: %s (%d rows)\n", c.Family, c.Path, c.Rows)
	}
	for _, msg := range rep.Warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", msg)
	}
	_, _ = fmt.Fprintf(w, "audit: %s\n", rep.AuditPath)
}

func count(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
