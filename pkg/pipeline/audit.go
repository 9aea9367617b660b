package pipeline

import (
	"strconv"

	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// Audit log columns.
var auditColumns = []string{"archivo", "filas_entrada", "filas_region", "estado"}

// auditTable builds the audit log, one row per input file in discovery
// order. Counts a file never reached are blank.
func auditTable(results []*Result) *table.Table {
	t := &table.Table{Name: AuditFile, Columns: auditColumns}
	for _, r := range results {
		t.Rows = append(t.Rows, table.Row{
			table.TextCell(r.File),
			countCell(r.InputRows),
			countCell(r.OutputRows),
			table.TextCell(r.Status()),
		})
	}
	return t
}

func countCell(n *int) table.Cell {
	if n == nil {
		return table.Cell{}
	}
	return table.TextCell(strconv.Itoa(*n))
}

func writeAudit(path string, results []*Result) error {
	return table.WriteCSVFile(path, auditTable(results))
}
