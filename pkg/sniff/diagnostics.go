package sniff

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Report columns read by LoadDiagnostics.
const (
	ColFile      = "archivo"
	ColEncoding  = "encoding_detectado"
	ColDelimiter = "separador"
)

// Override is a per-file encoding and delimiter taken from a header report.
type Override struct {
	Encoding  string
	Delimiter rune
}

// Diagnostics maps a file's base name to its override.
type Diagnostics map[string]Override

// Lookup returns the override for file, if the report had a usable one.
func (d Diagnostics) Lookup(file string) (Override, bool) {
	o, ok := d[file]
	return o, ok
}

// LoadDiagnostics reads a header report. A missing file yields an empty map.
// Rows lacking an encoding or a delimiter are ignored.
func LoadDiagnostics(path string) (Diagnostics, error) {
	diag := Diagnostics{}
	if path == "" {
		return diag, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return diag, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read diagnostics: %w", err)
	}

	var text []byte
	if utf8.Valid(raw) {
		text = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	} else {
		text, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode diagnostics: %w", err)
		}
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return diag, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read diagnostics header: %w", err)
	}
	idx := map[string]int{ColFile: -1, ColEncoding: -1, ColDelimiter: -1}
	for i, h := range header {
		if _, ok := idx[strings.TrimSpace(h)]; ok {
			idx[strings.TrimSpace(h)] = i
		}
	}
	for name, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("diagnostics %s: missing column %q", path, name)
		}
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read diagnostics: %w", err)
		}
		file := field(rec, idx[ColFile])
		enc := strings.TrimSpace(field(rec, idx[ColEncoding]))
		delim, ok := ParseDelimiter(field(rec, idx[ColDelimiter]))
		if file == "" || enc == "" || !ok {
			continue
		}
		diag[strings.TrimSpace(file)] = Override{Encoding: enc, Delimiter: delim}
	}
	return diag, nil
}

// ParseDelimiter reads a delimiter as written in a report. Tabs may appear
// literally, escaped, or spelled out.
func ParseDelimiter(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "":
		return 0, false
	case `\t`, "tab":
		return '\t', true
	}
	if t := strings.Trim(s, " "); t != "" {
		s = t
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, false
	}
	return r, true
}

// FormatDelimiter is the inverse of ParseDelimiter.
func FormatDelimiter(r rune) string {
	if r == '\t' {
		return `\t`
	}
	return string(r)
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
