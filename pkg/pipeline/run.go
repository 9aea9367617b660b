// CLAUDE:SUMMARY Orchestrator: discovers declaration files, processes them concurrently, then writes per-file outputs, consolidated tables, the audit log and the run manifest in discovery order.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/ruea-filter/pkg/schema"
	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// Output is one file written by a run.
type Output struct {
	Family string `yaml:"family,omitempty"`
	Path   string `yaml:"path"`
	Rows   int    `yaml:"rows"`
}

// Report summarizes a run.
type Report struct {
	RunID        string
	Started      time.Time
	Finished     time.Time
	Region       string
	Suffix       string
	Results      []*Result
	Consolidated []Output
	Warnings     []string
	AuditPath    string
	ManifestPath string
}

// Failed counts the files that ended in error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.State == Failed {
			n++
		}
	}
	return n
}

// Run filters every discovered input file to the target region. Per-file
// failures are recorded in the report and the audit log; Run itself fails
// only when there is nothing to process or the run's own outputs cannot be
// written.
func Run(ctx context.Context, o Options) (*Report, error) {
	opts := o.withDefaults()
	log := opts.Logger

	matcher := opts.Regions.Matcher(opts.Region)
	rep := &Report{
		RunID:   uuid.NewString(),
		Started: opts.Now(),
		Region:  matcher.Target(),
		Suffix:  matcher.Suffix(),
	}

	candidates, err := schema.Discover(opts.InputDir, opts.Families)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, opts.InputDir)
	}
	if err := ensureDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	log.Info("run started",
		zap.String("run_id", rep.RunID),
		zap.String("region", rep.Region),
		zap.Int("files", len(candidates)),
		zap.Int("workers", opts.Workers))

	results := make([]*Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, c := range candidates {
		g.Go(func() error {
			results[i] = process(gctx, c, opts.Diagnostics, matcher, log)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Results = results

	consolidated := newConsolidator(opts.Families)
	claimed := make(map[string]string, len(results))
	for _, res := range results {
		base := filepath.Join(opts.OutputDir, outputStem(res.File, opts.OutPrefix, rep.Suffix))
		if res.State == Converted {
			if owner, ok := claimed[base]; ok {
				log.Error("output name collision", zap.String("file", res.File), zap.String("owner", owner))
				res.fail(PhaseWrite, fmt.Errorf("%w: %s already written by %s", ErrOutputCollision, filepath.Base(base), owner))
			} else {
				writeFileOutputs(res, &opts, rep)
			}
		}
		if res.State == Written {
			claimed[base] = res.File
			consolidated.add(res.Family, res.filtered)
		}
		res.filtered = nil
	}
	// Files sharing a stem share outputs; only clear those no file wrote.
	for _, res := range results {
		base := filepath.Join(opts.OutputDir, outputStem(res.File, opts.OutPrefix, rep.Suffix))
		if _, ok := claimed[base]; !ok {
			removeStale(base)
		}
	}

	for _, t := range consolidated.tables() {
		out, err := writeConsolidated(t, &opts, rep)
		if err != nil {
			return nil, err
		}
		rep.Consolidated = append(rep.Consolidated, out...)
	}

	rep.AuditPath = filepath.Join(opts.OutputDir, AuditFile)
	if err := writeAudit(rep.AuditPath, results); err != nil {
		return nil, fmt.Errorf("write audit: %w", err)
	}

	rep.Finished = opts.Now()
	rep.ManifestPath = filepath.Join(opts.OutputDir, ManifestFile)
	if err := writeManifest(rep.ManifestPath, rep); err != nil {
		return nil, err
	}

	log.Info("run finished",
		zap.String("run_id", rep.RunID),
		zap.Int("files", len(results)),
		zap.Int("failed", rep.Failed()),
		zap.Int("warnings", len(rep.Warnings)))
	return rep, nil
}

// outputStem is the per-file output name without extension.
func outputStem(file, prefix, suffix string) string {
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	return prefix + stem + "_" + suffix
}

// writeFileOutputs writes the filtered table of res as CSV and, when it fits
// a sheet, XLSX. On error any file already written is removed.
func writeFileOutputs(res *Result, opts *Options, rep *Report) {
	log := opts.Logger.With(zap.String("file", res.File))
	base := filepath.Join(opts.OutputDir, outputStem(res.File, opts.OutPrefix, rep.Suffix))

	csvPath := base + ".csv"
	if err := table.WriteCSVFile(csvPath, res.filtered); err != nil {
		_ = os.Remove(csvPath)
		log.Error("write failed", zap.Error(err))
		res.fail(PhaseWrite, err)
		return
	}
	res.Outputs = append(res.Outputs, csvPath)

	xlsxPath := base + ".xlsx"
	if table.FitsSheet(res.filtered, opts.MaxSheetRows) {
		if err := table.WriteXLSXFile(xlsxPath, res.filtered); err != nil {
			for _, p := range append(res.Outputs, xlsxPath) {
				_ = os.Remove(p)
			}
			res.Outputs = nil
			log.Error("write failed", zap.Error(err))
			res.fail(PhaseWrite, err)
			return
		}
		res.Outputs = append(res.Outputs, xlsxPath)
	} else {
		_ = os.Remove(xlsxPath)
		rep.warn(log, fmt.Sprintf("%s: %d rows exceed the sheet limit, xlsx not written", res.File, res.filtered.Len()))
	}
	res.State = Written
}

// writeConsolidated writes a family's consolidated table.
func writeConsolidated(t *table.Table, opts *Options, rep *Report) ([]Output, error) {
	log := opts.Logger.With(zap.String("family", t.Name))
	f, err := schema.Get(t.Name)
	if err != nil {
		return nil, err
	}
	base := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_%s_consolidado", f.ConsolidatedBase, rep.Suffix))

	csvPath := base + ".csv"
	if err := table.WriteCSVFile(csvPath, t); err != nil {
		return nil, fmt.Errorf("consolidated %s: %w", f.ID, err)
	}
	outs := []Output{{Family: f.ID, Path: csvPath, Rows: t.Len()}}

	if !table.FitsSheet(t, opts.MaxSheetRows) {
		_ = os.Remove(base + ".xlsx")
		rep.warn(log, fmt.Sprintf("%s: consolidated table has %d rows, exceeds the sheet limit, xlsx not written", f.ID, t.Len()))
		return outs, nil
	}
	xlsxPath := base + ".xlsx"
	if err := table.WriteXLSXFile(xlsxPath, t); err != nil {
		return nil, fmt.Errorf("consolidated %s: %w", f.ID, err)
	}
	log.Info("consolidated", zap.Int("rows", t.Len()), zap.String("path", csvPath))
	return append(outs, Output{Family: f.ID, Path: xlsxPath, Rows: t.Len()}), nil
}

func (r *Report) warn(log *zap.Logger, msg string) {
	log.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}

// removeStale deletes outputs a previous run left for a file that produced
// none this time.
func removeStale(base string) {
	for _, ext := range []string{".csv", ".xlsx"} {
		_ = os.Remove(base + ext)
	}
}
