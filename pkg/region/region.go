// CLAUDE:SUMMARY Region alias table (built-in Metropolitana entry plus YAML extensions) and the matcher that filters rows by region value.
package region

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/ruea-filter/pkg/normalize"
)

// Entry describes one region and the spellings that denote it.
type Entry struct {
	Canonical    string   `yaml:"canonical"`
	Aliases      []string `yaml:"aliases"`
	Tokens       []string `yaml:"tokens"`
	Abbreviation string   `yaml:"abbreviation"`
	Suffix       string   `yaml:"suffix"`
}

// Metropolitana is the built-in entry for the Santiago metropolitan region.
var Metropolitana = Entry{
	Canonical: "Metropolitana de Santiago",
	Aliases: []string{
		"metropolitana de santiago",
		"metropolitana",
		"rm",
		"metropolitana santiago",
		"rm de santiago",
	},
	Tokens:       []string{"metropolitana", "santiago"},
	Abbreviation: "rm",
	Suffix:       "RM",
}

// ErrInvalidEntry is returned for entries without a canonical name.
var ErrInvalidEntry = errors.New("region entry has no canonical name")

// Table indexes entries by every normalized alias. It is not modified after
// construction.
type Table struct {
	entries []*Entry
	byAlias map[string]*Entry
}

// NewTable builds a table from entries. A later entry claiming an alias
// already taken replaces the earlier one for that alias.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{byAlias: make(map[string]*Entry)}
	for _, e := range entries {
		if err := t.add(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// DefaultTable holds the built-in entries only.
func DefaultTable() *Table {
	t, err := NewTable(Metropolitana)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(e Entry) error {
	canonical := normalize.RegionText(e.Canonical)
	if canonical == "" {
		return ErrInvalidEntry
	}

	n := &Entry{
		Canonical:    canonical,
		Abbreviation: normalize.RegionText(e.Abbreviation),
		Suffix:       strings.TrimSpace(e.Suffix),
	}
	for _, a := range append([]string{e.Canonical}, e.Aliases...) {
		if k := normalize.RegionText(a); k != "" && !slices.Contains(n.Aliases, k) {
			n.Aliases = append(n.Aliases, k)
		}
	}
	for _, tok := range e.Tokens {
		n.Tokens = append(n.Tokens, normalize.RegionWords(tok)...)
	}

	t.entries = append(t.entries, n)
	for _, a := range n.Aliases {
		t.byAlias[a] = n
	}
	return nil
}

// aliasFile is the YAML layout read by LoadTable.
type aliasFile struct {
	Regions []Entry `yaml:"regions"`
}

// LoadTable returns the default table extended with the entries of a YAML
// file. An empty path yields the default table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region aliases %s: %w", path, err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse region aliases %s: %w", path, err)
	}
	t, err := NewTable(append([]Entry{Metropolitana}, f.Regions...)...)
	if err != nil {
		return nil, fmt.Errorf("region aliases %s: %w", path, err)
	}
	return t, nil
}

// Lookup returns the entry one of whose aliases equals name once normalized.
func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.byAlias[normalize.RegionText(name)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns the normalized entries in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// Matcher decides whether region values denote one target region.
type Matcher struct {
	target string
	key    string
	entry  *Entry
}

// Matcher returns a matcher for target. When target is an alias of a known
// entry the entry's rules apply; otherwise only exact normalized equality.
func (t *Table) Matcher(target string) *Matcher {
	key := normalize.RegionText(target)
	return &Matcher{target: strings.TrimSpace(target), key: key, entry: t.byAlias[key]}
}

// Target is the region as configured.
func (m *Matcher) Target() string {
	return m.target
}

// Match reports whether value denotes the target region. Blank values never
// match.
func (m *Matcher) Match(value string) bool {
	words := normalize.RegionWords(value)
	if len(words) == 0 || m.key == "" {
		return false
	}
	text := strings.Join(words, " ")

	if m.entry == nil {
		return text == m.key
	}
	if slices.Contains(m.entry.Aliases, text) {
		return true
	}
	if len(m.entry.Tokens) > 0 && containsAll(words, m.entry.Tokens) {
		return true
	}
	return m.entry.Abbreviation != "" && words[len(words)-1] == m.entry.Abbreviation
}

// Suffix is the output file name suffix for the target region.
func (m *Matcher) Suffix() string {
	if m.entry != nil && m.entry.Suffix != "" {
		return m.entry.Suffix
	}
	return strings.ReplaceAll(m.target, " ", "_")
}

func containsAll(words, tokens []string) bool {
	for _, tok := range tokens {
		if !slices.Contains(words, tok) {
			return false
		}
	}
	return true
}
