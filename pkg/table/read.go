package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadStats reports lines the reader could not place in the table.
type ReadStats struct {
	// Dropped counts records with more non-empty fields than the header.
	Dropped int
}

// ReadCSV reads delimited text that is already decoded to UTF-8. The first
// record is the header. Records longer than the header are dropped unless the
// surplus fields are all empty; shorter records leave trailing cells Absent.
func ReadCSV(r io.Reader, comma rune) (*Table, ReadStats, error) {
	var stats ReadStats

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &Table{}, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Columns: headerNames(header)}
	width := len(t.Columns)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}
		if len(record) > width {
			if !allEmpty(record[width:]) {
				stats.Dropped++
				continue
			}
			record = record[:width]
		}

		row := make(Row, width)
		for i, v := range record {
			row[i] = TextCell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, stats, nil
}

// ReadXLSX reads the first sheet of a workbook. Cell values are taken raw so
// numbers keep their stored precision rather than the sheet's display format.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	copy(header, rows[0])

	t := &Table{Columns: headerNames(header)}
	for _, record := range rows[1:] {
		if allEmpty(record) {
			continue
		}
		row := make(Row, width)
		for i, v := range record {
			row[i] = TextCell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// headerNames trims names, drops a leading byte-order mark, names blank
// headers "Unnamed: i" and suffixes repeats as name.1, name.2, ...
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = Dedupe(h, seen)
	}
	return names
}

// Dedupe returns name, or name.N for the first N not yet in seen, and records
// the result in seen.
func Dedupe(name string, seen map[string]int) string {
	if _, dup := seen[name]; !dup {
		seen[name] = 0
		return name
	}
	for {
		seen[name]++
		candidate := fmt.Sprintf("%s.%d", name, seen[name])
		if _, dup := seen[candidate]; !dup {
			seen[candidate] = 0
			return candidate
		}
	}
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
