package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"12.345,67", Of(12345.67)},
		{"12,5", Of(12.5)},
		{"1200", Of(1200)},
		{"1234.56", Of(1234.56)},
		{"  -33,4489 ", Of(-33.4489)},
		{"+7", Of(7)},
		{"1 234,5", Of(1234.5)},
		{"1\u00a0234,5", Of(1234.5)},
		{"1.234.567,8", Of(1234567.8)},
		{"6,02E+23", Of(6.02e23)},
		{"1,5e-3", Of(0.0015)},
		{",5", Of(0.5)},
		{"0", Of(0)},

		{"", Missing},
		{"   ", Missing},
		{"-", Missing},
		{"NA", Missing},
		{"nan", Missing},
		{"None", Missing},
		{"NULL", Missing},
		{"abc", Missing},
		{"12,5 t", Missing},
		{"0x1p-2", Missing},
		{"1_000", Missing},
		{"inf", Missing},
		{"1e999", Missing},
		{"1,2,3", Missing},
	}
	for _, tt := range tests {
		got := Parse(tt.input)
		assert.Equal(t, tt.want.Valid, got.Valid, "Parse(%q).Valid", tt.input)
		if tt.want.Valid {
			assert.InDelta(t, tt.want.Float, got.Float, 1e-9, "Parse(%q)", tt.input)
		}
	}
}

func TestParseIdempotentOnCanonicalText(t *testing.T) {
	for _, input := range []string{"1234.56", "12345.67", "-0.001", "1200", "0.5", "600000000000000000000000"} {
		first := Parse(input)
		assert.True(t, first.Valid, input)
		assert.Equal(t, input, first.String())

		second := Parse(first.String())
		assert.Equal(t, first, second, "converting %q twice changed it", input)
	}
}

func TestMissingNeverZero(t *testing.T) {
	v := Parse("-")
	assert.False(t, v.Valid)
	assert.Equal(t, "", v.String())
}
