package sniff

import (
	"encoding/csv"
	"io"
	"strings"
)

var delimiters = []rune{';', ',', '|', '\t'}

// minConsistency is the share of records that must have the header's width.
const minConsistency = 0.9

// sniffDelimiter tries each candidate delimiter over text. When truncated,
// the last line is ignored because the cut may have split it.
func sniffDelimiter(text string, truncated bool) (rune, bool) {
	if truncated {
		if i := strings.LastIndexByte(text, '\n'); i >= 0 {
			text = text[:i+1]
		}
	}

	best, bestScore, bestWidth := rune(0), 0.0, 0
	for _, d := range delimiters {
		score, width, ok := consistency(text, d)
		if !ok {
			continue
		}
		if score > bestScore || (score == bestScore && width > bestWidth) {
			best, bestScore, bestWidth = d, score, width
		}
	}
	if best != 0 {
		return best, true
	}

	if strings.Count(text, ";") >= strings.Count(text, ",") {
		return ';', false
	}
	return ',', false
}

// consistency parses text with delimiter d and returns the share of data
// records whose width equals the header's.
func consistency(text string, d rune) (float64, int, bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = d
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil || len(header) < 2 {
		return 0, 0, false
	}

	var total, same int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, false
		}
		total++
		if len(rec) == len(header) {
			same++
		}
	}
	if total == 0 {
		return 1, len(header), true
	}
	score := float64(same) / float64(total)
	if score < minConsistency {
		return 0, 0, false
	}
	return score, len(header), true
}
