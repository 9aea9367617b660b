package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hazyhaar/ruea-filter/pkg/normalize"
)

var (
	registryMu sync.RWMutex
	families   []*Family
	byName     = make(map[string]*Family)
)

// Register compiles f's patterns, completes its synonym table and adds it to
// the global registry. It panics on an invalid family, as it runs at init.
func Register(f *Family) {
	pm, err := compilePatterns(f.ID, f.FilePatterns)
	if err != nil {
		panic(err)
	}
	f.patterns = pm

	synonyms := make(map[string]string, len(f.Synonyms)+len(f.Columns))
	for raw, canonical := range f.Synonyms {
		synonyms[normalize.ColumnKey(raw)] = canonical
	}
	for _, c := range f.Columns {
		synonyms[normalize.ColumnKey(c.Name)] = c.Name
	}
	f.Synonyms = synonyms

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := byName[f.ID]; dup {
		panic(fmt.Sprintf("schema family %q registered twice", f.ID))
	}
	families = append(families, f)
	for _, name := range append([]string{f.ID}, f.Aliases...) {
		byName[strings.ToLower(name)] = f
	}
}

// Get returns a registered family by ID or alias.
func Get(name string) (*Family, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown schema family: %q", name)
	}
	return f, nil
}

// All returns all registered families in registration order.
func All() []*Family {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Family, len(families))
	copy(out, families)
	return out
}
