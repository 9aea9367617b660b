package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// WriteCSV writes t as comma-delimited UTF-8 with a leading byte-order mark,
// which spreadsheet tools use to pick the encoding.
func WriteCSV(w io.Writer, t *Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = row.At(i).String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes t to path, replacing any existing file.
func WriteCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := WriteCSV(bw, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// FitsSheet reports whether t plus its header fits in a sheet of maxRows
// rows. maxRows <= 0 means the workbook format limit.
func FitsSheet(t *Table, maxRows int) bool {
	if maxRows <= 0 {
		maxRows = excelize.TotalRows
	}
	return t.Len()+1 <= maxRows
}

// WriteXLSXFile writes t to the first sheet of a new workbook at path.
// Numbers are stored as numbers; Absent, Empty and Missing cells are blank.
func WriteXLSXFile(path string, t *Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	values := make([]interface{}, len(t.Columns))
	for ri, row := range t.Rows {
		for i := range values {
			c := row.At(i)
			switch c.Kind {
			case Number:
				values[i] = c.Num
			case Text:
				values[i] = c.Text
			default:
				values[i] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", ri+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
