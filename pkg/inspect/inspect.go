// CLAUDE:SUMMARY Header inspection: detects encoding/delimiter per input file and writes the diagnostic report plus column name vocabularies.
package inspect

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hazyhaar/ruea-filter/pkg/normalize"
	"github.com/hazyhaar/ruea-filter/pkg/schema"
	"github.com/hazyhaar/ruea-filter/pkg/sniff"
	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// Report file names.
const (
	DiagnosticsFile = "diagnostico_headers.csv"
	MapFile         = "columnas_distintas_map.csv"
	VocabFile       = "columnas_normalizadas_vocab.csv"
)

// ErrNoInputFiles is returned when discovery finds nothing to inspect.
var ErrNoInputFiles = errors.New("no input files found")

// Options configures Run.
type Options struct {
	InputDir  string
	OutputDir string
	// Families restricts discovery. Nil means every registered family.
	Families []*schema.Family
	Logger   *zap.Logger
}

// Header is what was learned about one file.
type Header struct {
	File      string
	Kind      string
	Family    string
	Encoding  string
	Delimiter rune
	Columns   []string
	Err       error
}

// Report lists the inspected headers and the files written.
type Report struct {
	Headers []Header
	Outputs []string
}

// Run inspects the header of every discovered file and writes the three
// reports to OutputDir.
func Run(ctx context.Context, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	families := opts.Families
	if families == nil {
		families = schema.All()
	}

	candidates, err := schema.Discover(opts.InputDir, families)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, opts.InputDir)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	rep := &Report{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := ReadHeader(c.Path)
		h.Family = c.Family.ID
		if h.Err != nil {
			log.Warn("header unreadable", zap.String("file", h.File), zap.Error(h.Err))
		} else {
			log.Debug("header read", zap.String("file", h.File), zap.Int("columns", len(h.Columns)))
		}
		rep.Headers = append(rep.Headers, h)
	}

	for _, out := range []struct {
		name  string
		build func([]Header) *table.Table
	}{
		{DiagnosticsFile, diagnosticsTable},
		{MapFile, mapTable},
		{VocabFile, vocabTable},
	} {
		path := filepath.Join(opts.OutputDir, out.name)
		if err := table.WriteCSVFile(path, out.build(rep.Headers)); err != nil {
			return nil, err
		}
		rep.Outputs = append(rep.Outputs, path)
	}
	log.Info("inspection finished", zap.Int("files", len(rep.Headers)), zap.String("dir", opts.OutputDir))
	return rep, nil
}

// ReadHeader reads the header row of a .csv or .xlsx file.
func ReadHeader(path string) Header {
	h := Header{File: filepath.Base(path), Kind: "csv"}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		h.Kind = "xlsx"
		h.Columns, h.Err = xlsxHeader(path)
		return h
	}

	f, err := os.Open(path)
	if err != nil {
		h.Err = err
		return h
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, sniff.SampleSize)
	sample, err := br.Peek(sniff.SampleSize)
	if err != nil && !errors.Is(err, io.EOF) {
		h.Err = err
		return h
	}
	det := sniff.Detect(sample)
	h.Encoding, h.Delimiter = det.Encoding, det.Delimiter

	r, err := sniff.NewReader(br, det.Encoding)
	if err != nil {
		h.Err = err
		return h
	}
	cr := csv.NewReader(r)
	cr.Comma = det.Delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	record, err := cr.Read()
	if err != nil && err != io.EOF {
		h.Err = fmt.Errorf("read header: %w", err)
		return h
	}
	for i, c := range record {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		h.Columns = append(h.Columns, strings.TrimSpace(c))
	}
	return h
}

func xlsxHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := table.ReadXLSX(f)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

func textRow(values ...string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = table.TextCell(v)
	}
	return row
}

func diagnosticsTable(headers []Header) *table.Table {
	t := &table.Table{Columns: []string{
		"archivo", "tipo", "encoding_detectado", "separador",
		"num_columnas", "columnas_original", "columnas_normalizadas",
	}}
	for _, h := range headers {
		if h.Err != nil {
			t.Rows = append(t.Rows, textRow(h.File, h.Kind, "", "", "", "[error] "+h.Err.Error(), ""))
			continue
		}
		delim := ""
		if h.Delimiter != 0 {
			delim = sniff.FormatDelimiter(h.Delimiter)
		}
		keys := make([]string, len(h.Columns))
		for i, c := range h.Columns {
			keys[i] = normalize.ColumnKey(c)
		}
		t.Rows = append(t.Rows, textRow(
			h.File, h.Kind, h.Encoding, delim,
			strconv.Itoa(len(h.Columns)),
			strings.Join(h.Columns, "|"),
			strings.Join(keys, "|"),
		))
	}
	return t
}

// mapTable lists every distinct raw column name with its normalized form.
func mapTable(headers []Header) *table.Table {
	count := map[string]int{}
	files := map[string]map[string]bool{}
	for _, h := range headers {
		for _, c := range h.Columns {
			count[c]++
			if files[c] == nil {
				files[c] = map[string]bool{}
			}
			files[c][h.File] = true
		}
	}

	names := make([]string, 0, len(count))
	for c := range count {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool {
		ki, kj := normalize.ColumnKey(names[i]), normalize.ColumnKey(names[j])
		if ki != kj {
			return ki < kj
		}
		return names[i] < names[j]
	})

	t := &table.Table{Columns: []string{"columna_original", "columna_normalizada", "apariciones", "archivos_distintos"}}
	for _, c := range names {
		t.Rows = append(t.Rows, textRow(c, normalize.ColumnKey(c), strconv.Itoa(count[c]), strconv.Itoa(len(files[c]))))
	}
	return t
}

// maxExamples bounds the variants listed per normalized column.
const maxExamples = 5

// vocabTable groups raw names by normalized form, most frequent variants
// first.
func vocabTable(headers []Header) *table.Table {
	variants := map[string]map[string]int{}
	files := map[string]map[string]bool{}
	for _, h := range headers {
		for _, c := range h.Columns {
			k := normalize.ColumnKey(c)
			if variants[k] == nil {
				variants[k] = map[string]int{}
				files[k] = map[string]bool{}
			}
			variants[k][c]++
			files[k][h.File] = true
		}
	}

	keys := make([]string, 0, len(variants))
	for k := range variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &table.Table{Columns: []string{"columna_normalizada", "variantes_detectadas", "ejemplos_variantes", "archivos_con_esta_columna"}}
	for _, k := range keys {
		vs := make([]string, 0, len(variants[k]))
		for v := range variants[k] {
			vs = append(vs, v)
		}
		sort.Slice(vs, func(i, j int) bool {
			ci, cj := variants[k][vs[i]], variants[k][vs[j]]
			if ci != cj {
				return ci > cj
			}
			return vs[i] < vs[j]
		})
		examples := vs
		if len(examples) > maxExamples {
			examples = examples[:maxExamples]
		}
		t.Rows = append(t.Rows, textRow(
			k,
			strconv.Itoa(len(vs)),
			strings.Join(examples, " | "),
			strconv.Itoa(len(files[k])),
		))
	}
	return t
}
