package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/ruea-filter/pkg/table"
)

func TestFamilies(t *testing.T) {
	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, "efp", all[0].ID)
	assert.Equal(t, "ruea2023", all[1].ID)

	assert.Len(t, EFP.Columns, 21)
	assert.Len(t, RUEA2023.Columns, 35)
	assert.Equal(t, []string{"latitud", "longitud", "cantidad_toneladas"}, EFP.NumericColumns())
	assert.Len(t, RUEA2023.NumericColumns(), 7)

	f, err := Get("2023")
	require.NoError(t, err)
	assert.Same(t, RUEA2023, f)

	_, err = Get("sirene")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ruea-efp-2019-ckan.csv", "efp"},
		{"RUEA-EFP-2020-ckan.xlsx", "efp"},
		{"/data/raw/ckan_ruea_2023.csv", "ruea2023"},
		{"CKAN_RUEA_2023.xlsx", "ruea2023"},
		{"emisiones.csv", "efp"},
		{"ruea_2023.csv", "efp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name).ID)
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		family *Family
		raw    string
		want   string
		ok     bool
	}{
		{EFP, "Año", "año", true},
		{EFP, "ANIO", "año", true},
		{EFP, "a�o", "año", true},
		{EFP, " Region ", "region", true},
		{EFP, "Región", "region", true},
		{EFP, "CIIU4_ID", "id_ciiu4", true},
		{EFP, "Cantidad Tonelada", "cantidad_toneladas", true},
		{EFP, "Nombre Establecimiento", "nombre_establecimiento", true},
		{EFP, "observaciones", "", false},
		{RUEA2023, "id_ciiu4", "ciiu4_id", true},
		{RUEA2023, "Emisión Total", "emision_total", true},
	}
	for _, tt := range tests {
		t.Run(tt.family.ID+"/"+tt.raw, func(t *testing.T) {
			got, ok := tt.family.Canonical(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func rawTable(columns ...string) *table.Table {
	row := make(table.Row, len(columns))
	for i, c := range columns {
		row[i] = table.TextCell("v-" + c)
	}
	return &table.Table{Name: "t", Columns: columns, Rows: []table.Row{row}}
}

func TestReconcile(t *testing.T) {
	in := rawTable("Comuna", "obs", "Región", "AÑO", "region", "latitud ")

	out, err := Reconcile(in, EFP)
	require.NoError(t, err)

	// matched canonical, then the rest of the canonical columns, then extras
	assert.Equal(t, []string{"año", "region", "comuna", "latitud"}, out.Columns[:4])
	assert.Len(t, out.Columns, 21+2)
	assert.Equal(t, []string{"obs", "region.1"}, out.Columns[21:])

	row := out.Rows[0]
	assert.Equal(t, "v-AÑO", row[0].Text)
	assert.Equal(t, "v-Región", row[1].Text)
	assert.Equal(t, "v-Comuna", row[2].Text)
	assert.Equal(t, table.Absent, row[out.Index("razon_social")].Kind)
	assert.Equal(t, "v-obs", row[21].Text)
	assert.Equal(t, "v-region", row[22].Text)

	for _, c := range EFP.ColumnNames() {
		assert.GreaterOrEqual(t, out.Index(c), 0, c)
	}
}

func TestReconcileMissingRegion(t *testing.T) {
	_, err := Reconcile(rawTable("año", "comuna"), EFP)
	require.ErrorIs(t, err, ErrRegionColumnMissing)
	assert.Contains(t, err.Error(), "año, comuna")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"ruea-efp-2020-ckan.csv",
		"ruea-efp-2019-ckan.csv",
		"ruea-efp-2019-ckan.xlsx",
		"ckan_ruea_2023.csv",
		"otro.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := Discover(dir, All())
	require.NoError(t, err)

	var names, fams []string
	for _, c := range got {
		names = append(names, filepath.Base(c.Path))
		fams = append(fams, c.Family.ID)
	}
	assert.Equal(t, []string{
		"ruea-efp-2019-ckan.csv",
		"ruea-efp-2020-ckan.csv",
		"ruea-efp-2019-ckan.xlsx",
		"ckan_ruea_2023.csv",
	}, names)
	assert.Equal(t, []string{"efp", "efp", "efp", "ruea2023"}, fams)

	only, err := Discover(dir, []*Family{RUEA2023})
	require.NoError(t, err)
	assert.Len(t, only, 1)

	_, err = Discover(filepath.Join(dir, "missing"), All())
	assert.Error(t, err)
}
