package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/ruea-filter/pkg/numeric"
)

func texts(r Row) []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		comma   rune
		columns []string
		rows    [][]string
		dropped int
	}{
		{
			name:    "semicolon with BOM",
			input:   "\ufeffa;b\n1;2\n",
			comma:   ';',
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "duplicate and blank headers",
			input:   "x,x,,x.1\n1,2,3,4\n",
			comma:   ',',
			columns: []string{"x", "x.1", "Unnamed: 2", "x.1.1"},
			rows:    [][]string{{"1", "2", "3", "4"}},
		},
		{
			name:    "overlong row dropped, empty surplus truncated",
			input:   "a|b\n1|2|3\n4|5||\n",
			comma:   '|',
			columns: []string{"a", "b"},
			rows:    [][]string{{"4", "5"}},
			dropped: 1,
		},
		{
			name:    "quoted delimiter",
			input:   "a\tb\n\"x\ty\"\tz\n",
			comma:   '\t',
			columns: []string{"a", "b"},
			rows:    [][]string{{"x\ty", "z"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, stats, err := ReadCSV(strings.NewReader(tt.input), tt.comma)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, tbl.Columns)
			require.Len(t, tbl.Rows, len(tt.rows))
			for i, want := range tt.rows {
				assert.Equal(t, want, texts(tbl.Rows[i]))
			}
			assert.Equal(t, tt.dropped, stats.Dropped)
		})
	}
}

func TestReadCSVShortRowIsAbsent(t *testing.T) {
	tbl, _, err := ReadCSV(strings.NewReader("a,b,c\n1,\n"), ',')
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, Text, tbl.Rows[0][0].Kind)
	assert.Equal(t, Empty, tbl.Rows[0][1].Kind)
	assert.Equal(t, Absent, tbl.Rows[0][2].Kind)
}

func TestReadCSVEmptyInput(t *testing.T) {
	tbl, _, err := ReadCSV(strings.NewReader(""), ';')
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
	assert.Empty(t, tbl.Columns)
}

func TestProjectFilterConvert(t *testing.T) {
	src := &Table{
		Name:    "f",
		Columns: []string{"region", "lat"},
		Rows: []Row{
			{TextCell("RM"), TextCell("-33,45")},
			{TextCell("Biobío"), TextCell("-36,8")},
			{TextCell("RM"), TextCell("n/a")},
		},
	}

	p := src.Project([]string{"lat", "region", "extra"}, []int{1, 0, -1})
	assert.Equal(t, []string{"lat", "region", "extra"}, p.Columns)
	assert.Equal(t, Absent, p.Rows[0][2].Kind)

	f := p.Filter(func(r Row) bool { return r.At(1).Text == "RM" })
	require.Equal(t, 2, f.Len())

	c := f.ConvertNumeric([]string{"lat", "extra", "nope"})
	assert.Equal(t, Number, c.Rows[0][0].Kind)
	assert.Equal(t, -33.45, c.Rows[0][0].Num)
	assert.Equal(t, Missing, c.Rows[1][0].Kind)
	assert.Equal(t, Absent, c.Rows[1][2].Kind)

	// source untouched
	assert.Equal(t, Text, src.Rows[0][1].Kind)
}

func TestConcat(t *testing.T) {
	a := &Table{Columns: []string{"x", "y"}, Rows: []Row{{TextCell("1"), TextCell("2")}}}
	b := &Table{Columns: []string{"y", "z"}, Rows: []Row{{TextCell("3"), TextCell("4")}}}

	out := Concat("all", []string{"x", "y", "z"}, a, b)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"1", "2", ""}, texts(out.Rows[0]))
	assert.Equal(t, Absent, out.Rows[0][2].Kind)
	assert.Equal(t, []string{"", "3", "4"}, texts(out.Rows[1]))
}

func TestWriteCSV(t *testing.T) {
	tbl := &Table{
		Columns: []string{"año", "cantidad"},
		Rows: []Row{
			{TextCell("2021"), NumberCell(numeric.Of(12345.67))},
			{TextCell("a,b"), NumberCell(numeric.Missing)},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.Equal(t, "\ufeffaño,cantidad\n2021,12345.67\n\"a,b\",\n", buf.String())
}

func TestWriteCSVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	tbl := &Table{Columns: []string{"a"}, Rows: []Row{{TextCell("ñandú")}}}
	require.NoError(t, WriteCSVFile(path, tbl))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	back, _, err := ReadCSV(f, ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, back.Columns)
	assert.Equal(t, "ñandú", back.Rows[0][0].Text)
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	tbl := &Table{
		Columns: []string{"region", "lat", "vacio"},
		Rows: []Row{
			{TextCell("Metropolitana"), NumberCell(numeric.Of(-33.5)), {}},
			{TextCell("RM"), NumberCell(numeric.Missing), TextCell("")},
		},
	}
	require.NoError(t, WriteXLSXFile(path, tbl))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	back, err := ReadXLSX(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "lat", "vacio"}, back.Columns)
	require.Equal(t, 2, back.Len())
	assert.Equal(t, "Metropolitana", back.Rows[0][0].Text)
	assert.Equal(t, "-33.5", back.Rows[0][1].Text)
	assert.Equal(t, "RM", back.Rows[1][0].Text)
}

func TestFitsSheet(t *testing.T) {
	tbl := &Table{Columns: []string{"a"}, Rows: make([]Row, 3)}
	assert.True(t, FitsSheet(tbl, 4))
	assert.False(t, FitsSheet(tbl, 3))
	assert.True(t, FitsSheet(tbl, 0))
}
