// Package sniff guesses the text encoding and field delimiter of declaration
// files, and reads the header diagnostic report that can override the guess.
package sniff

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SampleSize is how much of a file Detect needs to see.
const SampleSize = 128 << 10

// Result is the outcome of Detect.
type Result struct {
	Encoding  string
	Delimiter rune
	// Sniffed is false when the delimiter came from the count fallback.
	Sniffed bool
	// Lossy is set when no candidate decoded the sample cleanly.
	Lossy bool
}

type candidate struct {
	name   string
	enc    encoding.Encoding
	accept func(sample []byte) bool
}

// Candidates are tried in this order; the first that accepts wins.
var candidates = []candidate{
	{"utf-8-sig", unicode.UTF8BOM, utf8.Valid},
	{"utf-8", unicode.UTF8, utf8.Valid},
	{"cp1252", charmap.Windows1252, definedInCP1252},
	{"latin-1", charmap.ISO8859_1, anyBytes},
	{"iso-8859-1", charmap.ISO8859_1, anyBytes},
}

// Names the local table resolves before falling back to the WHATWG index,
// which would map latin-1 to windows-1252.
var encodings = map[string]encoding.Encoding{
	"utf-8-sig":    unicode.UTF8BOM,
	"utf_8_sig":    unicode.UTF8BOM,
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
}

func definedInCP1252(b []byte) bool {
	for _, c := range b {
		switch c {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			return false
		}
	}
	return true
}

func anyBytes([]byte) bool { return true }

// Detect picks an encoding and a delimiter for sample, the leading bytes of a
// file. A sample of SampleSize bytes or more is taken to be cut mid-file.
func Detect(sample []byte) Result {
	truncated := len(sample) >= SampleSize
	if truncated {
		sample = trimPartialRune(sample)
	}

	res := Result{Lossy: true}
	chosen := candidates[len(candidates)-1]
	for _, c := range candidates {
		if c.accept(sample) {
			chosen = c
			res.Lossy = false
			break
		}
	}
	res.Encoding = chosen.name

	text, err := chosen.enc.NewDecoder().Bytes(sample)
	if err != nil {
		text = []byte(strings.ToValidUTF8(string(sample), "\uFFFD"))
	}
	res.Delimiter, res.Sniffed = sniffDelimiter(string(text), truncated)
	return res
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end by the
// sample cut. Input that is not UTF-8 is returned unchanged.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < utf8.RuneSelf {
			return b
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}

// LookupEncoding resolves an encoding name as written in a diagnostic report.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if e, ok := encodings[key]; ok {
		return e, nil
	}
	e, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return e, nil
}

// NewReader returns r decoded from the named encoding to UTF-8. Bytes the
// encoding cannot represent become U+FFFD.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	e, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}
