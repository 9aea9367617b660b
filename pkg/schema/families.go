package schema

func init() {
	Register(EFP)
	Register(RUEA2023)
}

func columns(numeric []string, names ...string) []Column {
	out := make([]Column, len(names))
	for i, n := range names {
		out[i] = Column{Name: n}
		for _, num := range numeric {
			if n == num {
				out[i].Numeric = true
			}
		}
	}
	return out
}

// Header spellings of "año" seen once the ñ was lost to a bad encoding.
var yearSynonyms = map[string]string{
	"ano":  "año",
	"anio": "año",
	"a_o":  "año",
}

func withYear(extra map[string]string) map[string]string {
	out := make(map[string]string, len(yearSynonyms)+len(extra))
	for k, v := range yearSynonyms {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// EFP is the per-year stationary source emission files (ruea-efp-YYYY-ckan).
var EFP = &Family{
	ID:          "efp",
	Description: "RUEA stationary source emissions, one file per year",
	Columns: columns(
		[]string{"latitud", "longitud", "cantidad_toneladas"},
		"año", "razon_social", "rut_razon_social", "nombre_establecimiento", "id_vu",
		"ciiu4", "id_ciiu4", "rubro_vu", "id_rubro_vu",
		"region", "provincia", "comuna", "id_comuna", "latitud", "longitud",
		"cantidad_toneladas", "unidad", "contaminantes", "id_contaminantes",
		"fuente_emisora_general", "id_fuente_emisora",
	),
	RegionColumn: "region",
	Synonyms: withYear(map[string]string{
		"ciiu4_id":          "id_ciiu4",
		"cantidad_tonelada": "cantidad_toneladas",
	}),
	FilePatterns:     []string{`^ruea-efp-`},
	Globs:            []string{"ruea-efp-*-ckan.csv", "ruea-efp-*-ckan.xlsx"},
	ConsolidatedBase: "ruea_efp",
}

// RUEA2023 is the single 2023 declaration file with per-fuel emissions.
var RUEA2023 = &Family{
	ID:          "ruea2023",
	Aliases:     []string{"2023"},
	Description: "RUEA 2023 declarations with per-fuel and process emissions",
	Columns: columns(
		[]string{
			"latitud", "longitud", "emision_combustible_primario",
			"emision_combustible_secundario", "emision_procesos", "emision_total", "emision_retc",
		},
		"año", "id_vu", "declaracion_id", "razon_social", "rut_razon_social",
		"nombre_establecimiento", "ciiu4", "ciiu4_id", "ciiu6", "ciiu6_id", "rubro", "rubro_id",
		"region", "provincia", "comuna", "codigo_unico_territorial", "latitud", "longitud",
		"tipo_fuente", "source_id", "codigo_fuente", "combustible_primario", "ccf8_primario",
		"combustible_secundario", "ccf8_secundario", "ccf8_procesos", "contaminante_id",
		"contaminante", "emision_combustible_primario", "emision_combustible_secundario",
		"emision_procesos", "emision_total", "origen_data", "emision_retc", "tipo_outlier",
	),
	RegionColumn: "region",
	Synonyms: withYear(map[string]string{
		"id_ciiu4": "ciiu4_id",
	}),
	FilePatterns:     []string{`^ckan_ruea_2023`},
	Globs:            []string{"ckan_ruea_2023.csv", "ckan_ruea_2023.xlsx"},
	ConsolidatedBase: "ckan_ruea_2023",
}
