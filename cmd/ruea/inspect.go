package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/ruea-filter/pkg/inspect"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report encoding, delimiter and headers of every input file",
		Long: `Inspect the header of every discovered file and write, next to the
diagnostic file, diagnostico_headers.csv, columnas_distintas_map.csv and
columnas_normalizadas_vocab.csv. filter reads diagnostico_headers.csv to
override encoding and delimiter detection.`,
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	families, err := selectFamilies(cfg.Only)
	if err != nil {
		return err
	}
	rep, err := inspect.Run(cmd.Context(), inspect.Options{
		InputDir:  cfg.InputDir,
		OutputDir: filepath.Dir(cfg.DiagnosticFile),
		Families:  families,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	for _, p := range rep.Outputs {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
