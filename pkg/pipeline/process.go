package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hazyhaar/ruea-filter/pkg/region"
	"github.com/hazyhaar/ruea-filter/pkg/schema"
	"github.com/hazyhaar/ruea-filter/pkg/sniff"
	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// source is what readFile learned about a file besides its rows.
type source struct {
	encoding  string
	delimiter rune
	dropped   int
}

// loadFile is the reader process uses; tests replace it.
var loadFile = readFile

// readFile loads a .csv or .xlsx file into a raw table. Delimited files use
// the diagnostic override when there is one and detection otherwise.
func readFile(path string, diag sniff.Diagnostics, log *zap.Logger) (*table.Table, source, error) {
	var src source

	f, err := os.Open(path)
	if err != nil {
		return nil, src, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		t, err := table.ReadXLSX(f)
		return t, src, err
	}

	br := bufio.NewReaderSize(f, sniff.SampleSize)
	if o, ok := diag.Lookup(filepath.Base(path)); ok {
		src.encoding, src.delimiter = o.Encoding, o.Delimiter
		log.Debug("using diagnostic override", zap.String("encoding", o.Encoding))
	} else {
		sample, err := br.Peek(sniff.SampleSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, src, fmt.Errorf("sample: %w", err)
		}
		det := sniff.Detect(sample)
		src.encoding, src.delimiter = det.Encoding, det.Delimiter
		if det.Lossy {
			log.Warn("no encoding decodes cleanly, decoding lossily", zap.String("encoding", det.Encoding))
		}
		if !det.Sniffed {
			log.Debug("delimiter sniffing inconclusive, using count fallback")
		}
	}

	r, err := sniff.NewReader(br, src.encoding)
	if err != nil {
		return nil, src, err
	}
	t, stats, err := table.ReadCSV(r, src.delimiter)
	if err != nil {
		return nil, src, err
	}
	src.dropped = stats.Dropped
	return t, src, nil
}

// process runs one file through read, reconcile, filter and convert. Writing
// is left to the caller. The returned result never carries a panic or a
// partially built table.
func process(ctx context.Context, c schema.Candidate, diag sniff.Diagnostics, m *region.Matcher, log *zap.Logger) (res *Result) {
	res = &Result{
		File:   filepath.Base(c.Path),
		Path:   c.Path,
		Family: c.Family.ID,
	}
	log = log.With(zap.String("file", res.File), zap.String("family", res.Family))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing", zap.Any("panic", r), zap.Stack("stack"))
			phase := PhaseRead
			if res.State != Pending {
				phase = PhaseReconcile
			}
			res.fail(phase, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return res.fail(PhaseRead, err)
	}

	raw, src, err := loadFile(c.Path, diag, log)
	res.Encoding = src.encoding
	if src.delimiter != 0 {
		res.Delimiter = sniff.FormatDelimiter(src.delimiter)
	}
	if err != nil {
		log.Error("read failed", zap.Error(err))
		return res.fail(PhaseRead, err)
	}
	raw.Name = res.File
	res.DroppedLines = src.dropped
	res.InputRows = intPtr(raw.Len())
	res.State = Loaded
	if src.dropped > 0 {
		log.Warn("skipped malformed lines", zap.Int("lines", src.dropped))
	}

	t, err := schema.Reconcile(raw, c.Family)
	if err != nil {
		log.Error("reconcile failed", zap.Error(err))
		return res.fail(PhaseReconcile, err)
	}
	res.State = Normalized

	ri := t.Index(c.Family.RegionColumn)
	t = t.Filter(func(row table.Row) bool {
		return m.Match(row.At(ri).Text)
	})
	res.OutputRows = intPtr(t.Len())
	res.State = Filtered

	t = t.ConvertNumeric(c.Family.NumericColumns())
	res.State = Converted

	log.Info("file processed",
		zap.String("encoding", res.Encoding),
		zap.String("delimiter", res.Delimiter),
		zap.Int("rows_in", *res.InputRows),
		zap.Int("rows_region", *res.OutputRows))

	if t.Len() == 0 {
		res.State = Skipped
		return res
	}
	res.filtered = t
	return res
}
