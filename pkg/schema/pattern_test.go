package schema

import "testing"

func TestCompilePatterns(t *testing.T) {
	pm, err := compilePatterns("efp", []string{`^ruea-efp-\d{4}`, `^efp_`})
	if err != nil {
		t.Fatalf("compilePatterns: %v", err)
	}

	matches := map[string]string{
		"ruea-efp-2019-ckan.csv": "efp#0",
		"RUEA-EFP-2005-ckan.csv": "efp#0",
		"efp_2010.xlsx":          "efp#1",
	}
	for name, want := range matches {
		got, ok := pm.match(name)
		if !ok || got != want {
			t.Errorf("match(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}

	for _, name := range []string{"ruea-efp-xxxx.csv", "ckan_ruea_2023.csv", ""} {
		if _, ok := pm.match(name); ok {
			t.Errorf("match(%q) = true, want false", name)
		}
	}

	if _, err := compilePatterns("bad", []string{"("}); err == nil {
		t.Error("expected error for invalid regex")
	}

	var none *patternMatcher
	if _, ok := none.match("anything"); ok {
		t.Error("nil matcher matched")
	}
}
