package inspect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/hazyhaar/ruea-filter/pkg/sniff"
	"github.com/hazyhaar/ruea-filter/pkg/table"
)

func readReport(t *testing.T, path string) *table.Table {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	tbl, _, err := table.ReadCSV(f, ',')
	require.NoError(t, err)
	return tbl
}

func row(tbl *table.Table, i int) map[string]string {
	out := map[string]string{}
	for j, c := range tbl.Columns {
		out[c] = tbl.Rows[i].At(j).String()
	}
	return out
}

func setup(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	write := func(name string, b []byte) {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), b, 0o644))
	}
	write("ruea-efp-2019-ckan.csv", []byte("\xef\xbb\xbfAño;Region;Comuna\n2019;RM;Santiago\n"))
	cp, err := charmap.Windows1252.NewEncoder().Bytes([]byte("año\tregión\tcomuna\n2020\tRM\tÑuñoa\n"))
	require.NoError(t, err)
	write("ruea-efp-2020-ckan.csv", cp)
	write("ruea-efp-2021-ckan.xlsx", []byte("not a workbook"))
	write("ckan_ruea_2023.csv", []byte("AÑO,region,emision_total\n2023,RM,1\n"))
	return in
}

func TestRun(t *testing.T) {
	in, out := setup(t), t.TempDir()

	rep, err := Run(context.Background(), Options{InputDir: in, OutputDir: out})
	require.NoError(t, err)
	require.Len(t, rep.Headers, 4)
	assert.Len(t, rep.Outputs, 3)

	diag := readReport(t, filepath.Join(out, DiagnosticsFile))
	require.Equal(t, 4, diag.Len())

	r := row(diag, 0)
	assert.Equal(t, "ruea-efp-2019-ckan.csv", r["archivo"])
	assert.Equal(t, "csv", r["tipo"])
	assert.Equal(t, "utf-8-sig", r["encoding_detectado"])
	assert.Equal(t, ";", r["separador"])
	assert.Equal(t, "3", r["num_columnas"])
	assert.Equal(t, "Año|Region|Comuna", r["columnas_original"])
	assert.Equal(t, "ano|region|comuna", r["columnas_normalizadas"])

	r = row(diag, 1)
	assert.Equal(t, "cp1252", r["encoding_detectado"])
	assert.Equal(t, `\t`, r["separador"])
	assert.Equal(t, "año|región|comuna", r["columnas_original"])

	r = row(diag, 2)
	assert.Equal(t, "xlsx", r["tipo"])
	assert.Contains(t, r["columnas_original"], "[error]")
	assert.Equal(t, "", r["num_columnas"])

	assert.Equal(t, "ckan_ruea_2023.csv", row(diag, 3)["archivo"])

	vocab := readReport(t, filepath.Join(out, VocabFile))
	var ano map[string]string
	for i := range vocab.Rows {
		if r := row(vocab, i); r["columna_normalizada"] == "ano" {
			ano = r
		}
	}
	require.NotNil(t, ano)
	assert.Equal(t, "3", ano["variantes_detectadas"])
	assert.Equal(t, "AÑO | Año | año", ano["ejemplos_variantes"])
	assert.Equal(t, "3", ano["archivos_con_esta_columna"])

	m := readReport(t, filepath.Join(out, MapFile))
	assert.Equal(t, []string{"columna_original", "columna_normalizada", "apariciones", "archivos_distintos"}, m.Columns)
	first := row(m, 0)
	assert.Equal(t, "AÑO", first["columna_original"])
	assert.Equal(t, "ano", first["columna_normalizada"])
}

func TestRunFeedsDiagnostics(t *testing.T) {
	in, out := setup(t), t.TempDir()
	_, err := Run(context.Background(), Options{InputDir: in, OutputDir: out})
	require.NoError(t, err)

	diag, err := sniff.LoadDiagnostics(filepath.Join(out, DiagnosticsFile))
	require.NoError(t, err)
	o, ok := diag.Lookup("ruea-efp-2020-ckan.csv")
	require.True(t, ok)
	assert.Equal(t, sniff.Override{Encoding: "cp1252", Delimiter: '\t'}, o)

	_, ok = diag.Lookup("ruea-efp-2021-ckan.xlsx")
	assert.False(t, ok)
}

func TestRunNoInput(t *testing.T) {
	_, err := Run(context.Background(), Options{InputDir: t.TempDir(), OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoInputFiles)
}
