package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ruea",
		Short: "Region filter for RETC/RUEA emission declarations",
		Long: `ruea reads the RUEA emission declaration files published by the RETC,
reconciles their headers with the canonical schema of each file generation,
keeps the rows of one region and writes per-file and consolidated outputs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ./ruea.yaml if present)")
	pf.String("root", ".", "project root; relative paths resolve against it")
	pf.String("input-dir", "", "directory holding the downloaded files")
	pf.String("output-dir", "", "directory for filtered outputs")
	pf.String("diagnostic-file", "", "header diagnostic report (read by filter, written by inspect)")
	pf.String("only", "", "restrict to one family: efp or 2023")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (console, json)")

	root.AddCommand(newFilterCmd(), newInspectCmd(), newFamiliesCmd())
	return root
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		l, logErr := newLogger(LogConfig{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// setup loads the configuration and builds the logger for cmd.
func setup(cmd *cobra.Command) (*Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}
