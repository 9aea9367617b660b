// Package numeric converts locale-formatted numeric text (comma decimal
// separator, period thousands separator) into float values.
//
// Conversion never fails: text that is blank, a missing-value sentinel or not
// a plain decimal number becomes Missing.
package numeric

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Value is a converted cell. The zero value is Missing.
type Value struct {
	Float float64
	Valid bool
}

// Missing is the explicit missing marker.
var Missing = Value{}

// Of wraps a known float.
func Of(f float64) Value {
	return Value{Float: f, Valid: true}
}

// String renders the value in canonical form, or "" when missing.
// Canonical text parses back to the same value.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// sentinels are lower-cased text values that mean "no value".
var sentinels = map[string]struct{}{
	"":     {},
	"na":   {},
	"nan":  {},
	"none": {},
	"null": {},
}

// decimalSyntax rejects inputs strconv would accept but a spreadsheet export
// never produces (hex floats, underscores, inf).
var decimalSyntax = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Parse converts s following the locale rules:
//
//	"12.345,67" -> 12345.67  (periods are thousands separators when a comma is present)
//	"12,5"      -> 12.5
//	"1200"      -> 1200
//	"1 234,5"   -> 1234.5
//	"-", "", "NaN", "abc" -> Missing
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if _, ok := sentinels[strings.ToLower(s)]; ok {
		return Missing
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	if !decimalSyntax.MatchString(s) {
		return Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Missing
	}
	return Of(f)
}
