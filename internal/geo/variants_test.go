package geo

import (
	"strings"
	"testing"
)

func TestNormalizeTextStripsDiacriticsAndPunctuation(t *testing.T) {
	got := normalizeText("  Carrera 43A, Medellín — Antioquía!  ")
	want := "carrera 43a medellin antioquia"
	if got != want {
		t.Fatalf("normalizeText = %q, want %q", got, want)
	}
}

func TestNormalizeTextKeepsHashAndHyphen(t *testing.T) {
	got := normalizeText("Calle 10 # 43-12")
	if got != "calle 10 # 43-12" {
		t.Fatalf("normalizeText = %q", got)
	}
}

func TestCleanQueryCanonicalizesPunctuation(t *testing.T) {
	got := cleanQuery("Calle 10#43-12 ,Medellin")
	want := "Calle 10 # 43-12, Medellin"
	if got != want {
		t.Fatalf("cleanQuery = %q, want %q", got, want)
	}
}

func TestExtractAlphaTokens(t *testing.T) {
	tokens := extractAlphaTokens("Calle 10 # 43a El Poblado")
	want := []string{"calle", "43a", "el", "poblado"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestExtractNumericTokens(t *testing.T) {
	tokens := extractNumericTokens("Carrera 43A # 10-12")
	want := []string{"43a", "10", "12"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestBuildAddressVariantsStartsWithCleanQuery(t *testing.T) {
	variants := buildAddressVariants("Calle 10 # 43-12")
	if len(variants) == 0 {
		t.Fatal("no variants generated")
	}
	if variants[0] != "Calle 10 # 43-12" {
		t.Fatalf("first variant = %q, want the cleaned query", variants[0])
	}
}

func TestBuildAddressVariantsIncludesNoRewriteAndCityHint(t *testing.T) {
	variants := buildAddressVariants("Carrera 70 # 45-23")

	var hasNo, hasHint bool
	for _, v := range variants {
		if strings.Contains(v, " No ") {
			hasNo = true
		}
		if strings.HasSuffix(v, defaultCityHint) {
			hasHint = true
		}
	}
	if !hasNo {
		t.Error("expected a 'No' rewrite variant")
	}
	if !hasHint {
		t.Error("expected a city-hinted variant")
	}
}

func TestBuildAddressVariantsIntersectionPhrasing(t *testing.T) {
	variants := buildAddressVariants("Carrera 70 # 44")

	found := false
	for _, v := range variants {
		if v == "Carrera 70 con Calle 44" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing intersection phrasing, got %v", variants)
	}
}

func TestBuildAddressVariantsDeduplicates(t *testing.T) {
	variants := buildAddressVariants("Parque Lleras")
	seen := make(map[string]bool)
	for _, v := range variants {
		if seen[v] {
			t.Fatalf("duplicate variant %q", v)
		}
		seen[v] = true
	}
}

func TestStrictVariants(t *testing.T) {
	variants := strictVariants("Calle 10 # 43-12")
	if len(variants) != 2 {
		t.Fatalf("got %d strict variants, want 2", len(variants))
	}
	if variants[0] != "Calle 10 # 43-12" {
		t.Errorf("variants[0] = %q", variants[0])
	}
	if !strings.HasSuffix(variants[1], defaultCityHint) {
		t.Errorf("variants[1] = %q, want city hint suffix", variants[1])
	}
}

func TestDedupeVariantsDropsShortEntries(t *testing.T) {
	out := dedupeVariants([]string{"ab", "Calle 10", "  "})
	if len(out) != 1 || out[0] != "Calle 10" {
		t.Fatalf("dedupeVariants = %v", out)
	}
}
