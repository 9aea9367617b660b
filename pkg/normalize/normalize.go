// CLAUDE:SUMMARY Text normalization shared by column reconciliation and region matching (strip accents, fold case, collapse punctuation).
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transformer chains keep state between calls, so each caller gets its own.
func newStripper() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// StripAccents removes combining marks after compatibility decomposition
// (e.g. Región -> Region, Año -> Ano).
func StripAccents(s string) string {
	result, _, err := transform.String(newStripper(), s)
	if err != nil {
		return s
	}
	return result
}

// LowercaseASCII lowercases and strips accents (e.g. VALPARAÍSO -> valparaiso).
func LowercaseASCII(s string) string {
	return StripAccents(strings.ToLower(s))
}

// ColumnKey is the lookup form of a raw column header: accents stripped,
// lower-cased, whitespace, punctuation and symbols folded to a single
// underscore, underscores trimmed at both ends.
//
//	"Año "          -> "ano"
//	"ID Ciiu4"      -> "id_ciiu4"
//	"Cantidad (t.)" -> "cantidad_t"
func ColumnKey(name string) string {
	s := LowercaseASCII(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	return strings.Trim(b.String(), "_")
}

// RegionText is the comparison form of a free-text region value: accents
// stripped, lower-cased, punctuation and symbols replaced by spaces, the word
// "region" dropped and whitespace collapsed.
//
//	"Región Metropolitana de Santiago" -> "metropolitana de santiago"
//	"XIII - R.M."                      -> "xiii r m"
func RegionText(s string) string {
	return strings.Join(RegionWords(s), " ")
}

// RegionWords is RegionText split into words.
func RegionWords(s string) []string {
	folded := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, LowercaseASCII(s))

	fields := strings.Fields(folded)
	words := fields[:0]
	for _, f := range fields {
		if f == "region" {
			continue
		}
		words = append(words, f)
	}
	return words
}
