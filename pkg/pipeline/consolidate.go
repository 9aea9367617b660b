package pipeline

import (
	"github.com/hazyhaar/ruea-filter/pkg/schema"
	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// consolidator accumulates the filtered tables of each family in the order
// they are added.
type consolidator struct {
	order []*schema.Family
	parts map[string][]*table.Table
}

func newConsolidator(families []*schema.Family) *consolidator {
	return &consolidator{
		order: families,
		parts: make(map[string][]*table.Table),
	}
}

func (c *consolidator) add(family string, t *table.Table) {
	c.parts[family] = append(c.parts[family], t)
}

// tables returns one consolidated table per family with rows, named after
// the family ID. Columns are the family's canonical columns followed by
// extra columns in first-seen order.
func (c *consolidator) tables() []*table.Table {
	var out []*table.Table
	for _, f := range c.order {
		parts := c.parts[f.ID]
		if len(parts) == 0 {
			continue
		}
		columns := f.ColumnNames()
		seen := make(map[string]bool, len(columns))
		for _, name := range columns {
			seen[name] = true
		}
		for _, t := range parts {
			for _, name := range t.Columns {
				if !seen[name] {
					seen[name] = true
					columns = append(columns, name)
				}
			}
		}
		out = append(out, table.Concat(f.ID, columns, parts...))
	}
	return out
}
