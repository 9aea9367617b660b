// CLAUDE:SUMMARY Schema families (canonical columns, synonyms, file patterns), classification by file name, discovery and column reconciliation.
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/hazyhaar/ruea-filter/pkg/normalize"
	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// Column is one canonical column of a family.
type Column struct {
	Name    string
	Numeric bool
}

// Family is a canonical schema shared by one generation of declaration files.
type Family struct {
	ID          string
	Aliases     []string
	Description string
	Columns     []Column
	// RegionColumn is the canonical column filtered on.
	RegionColumn string
	// Synonyms maps a normalized raw column name to its canonical name.
	// Register adds an identity entry for every canonical column.
	Synonyms map[string]string
	// FilePatterns are regexes over the lower-cased file name.
	FilePatterns []string
	// Globs find candidate input files in a directory.
	Globs []string
	// ConsolidatedBase prefixes the family's consolidated output name.
	ConsolidatedBase string

	patterns *patternMatcher
}

// ColumnNames returns the canonical column names in order.
func (f *Family) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the names of the columns flagged numeric.
func (f *Family) NumericColumns() []string {
	var names []string
	for _, c := range f.Columns {
		if c.Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Canonical returns the canonical name a raw column header maps to.
func (f *Family) Canonical(raw string) (string, bool) {
	c, ok := f.Synonyms[normalize.ColumnKey(raw)]
	return c, ok
}

// DefaultFamily is used for files no pattern claims.
const DefaultFamily = "efp"

// Classify picks the family for a file name. Families are tried in
// registration order; a name no pattern matches gets DefaultFamily.
func Classify(name string) *Family {
	base := filepath.Base(name)
	for _, f := range All() {
		if _, ok := f.patterns.match(base); ok {
			return f
		}
	}
	f, err := Get(DefaultFamily)
	if err != nil {
		panic(err)
	}
	return f
}

// Candidate is a discovered input file.
type Candidate struct {
	Path   string
	Family *Family
}

// Discover lists the input files of the given families in dir: families in
// the order given, then glob order, then lexical order. A file matched by
// several globs is listed once.
func Discover(dir string, families []*Family) ([]Candidate, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("input dir: %w", err)
	}

	seen := make(map[string]bool)
	var out []Candidate
	for _, f := range families {
		for _, g := range f.Globs {
			matches, err := filepath.Glob(filepath.Join(dir, g))
			if err != nil {
				return nil, fmt.Errorf("family %s glob %q: %w", f.ID, g, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				if seen[m] {
					continue
				}
				seen[m] = true
				out = append(out, Candidate{Path: m, Family: Classify(m)})
			}
		}
	}
	return out, nil
}

// ErrRegionColumnMissing is returned by Reconcile when no input column maps
// to the family's region column.
var ErrRegionColumnMissing = errors.New("region column missing")

// Reconcile renames t's columns to f's canonical names. The result holds the
// matched canonical columns in canonical order, then the unmatched canonical
// columns (all cells Absent), then the unrecognized columns in input order.
// When two input columns map to the same canonical name the first one wins
// and the other is kept as an extra.
func Reconcile(t *table.Table, f *Family) (*table.Table, error) {
	assigned := make(map[string]int)
	for i, raw := range t.Columns {
		canonical, ok := f.Canonical(raw)
		if !ok {
			continue
		}
		if _, taken := assigned[canonical]; !taken {
			assigned[canonical] = i
		}
	}
	if _, ok := assigned[f.RegionColumn]; !ok {
		return nil, fmt.Errorf("%w: %s not found among [%s]",
			ErrRegionColumnMissing, f.RegionColumn, strings.Join(t.Columns, ", "))
	}

	var columns []string
	var source []int
	var missing []string
	for _, c := range f.Columns {
		if i, ok := assigned[c.Name]; ok {
			columns = append(columns, c.Name)
			source = append(source, i)
		} else {
			missing = append(missing, c.Name)
		}
	}
	for _, name := range missing {
		columns = append(columns, name)
		source = append(source, -1)
	}

	used := make(map[string]int, len(t.Columns))
	for _, c := range columns {
		used[c] = 0
	}
	for i, raw := range t.Columns {
		if slices.Contains(source, i) {
			continue
		}
		columns = append(columns, table.Dedupe(raw, used))
		source = append(source, i)
	}

	return t.Project(columns, source), nil
}
