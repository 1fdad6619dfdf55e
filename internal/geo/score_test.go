package geo

import (
	"math"
	"testing"
)

func TestHaversineKmZeroDistance(t *testing.T) {
	if km := haversineKm(cityCenterLat, cityCenterLon, cityCenterLat, cityCenterLon); km != 0 {
		t.Fatalf("distance to self = %v, want 0", km)
	}
}

func TestHaversineKmKnownDistance(t *testing.T) {
	// Medellin to Bogota is roughly 240 km.
	km := haversineKm(6.2442, -75.5812, 4.7110, -74.0721)
	if km < 220 || km > 260 {
		t.Fatalf("Medellin-Bogota distance = %v km, want ~240", km)
	}
}

func TestScoreResultCityAndRegionBonus(t *testing.T) {
	inCity := SearchResult{DisplayName: "Calle 10, Medellin, Antioquia", Lat: cityCenterLat, Lon: cityCenterLon}
	outside := SearchResult{DisplayName: "Calle 10, Cali, Valle", Lat: 3.4516, Lon: -76.5320}

	q := "Calle 10"
	if got, want := scoreResult(inCity, 0, q, false), scoreResult(outside, 0, q, false); got <= want {
		t.Fatalf("in-city score %v not above out-of-city score %v", got, want)
	}
}

func TestScoreResultRivalCityPenalty(t *testing.T) {
	bogota := SearchResult{DisplayName: "Carrera 7, Bogota", Lat: 4.7110, Lon: -74.0721}

	plain := scoreResult(bogota, 0, "Carrera 7", false)
	asked := scoreResult(bogota, 0, "Carrera 7 Bogota", false)
	if plain >= asked {
		t.Fatalf("penalty should not apply when the query names the city: plain=%v asked=%v", plain, asked)
	}
}

func TestScoreResultTokenMatches(t *testing.T) {
	base := SearchResult{DisplayName: "Carrera 43a # 10", Lat: cityCenterLat, Lon: cityCenterLon}
	other := SearchResult{DisplayName: "Avenida Oriental", Lat: cityCenterLat, Lon: cityCenterLon}

	q := "Carrera 43a # 10"
	if scoreResult(base, 0, q, false) <= scoreResult(other, 0, q, false) {
		t.Fatal("token matches should outrank a non-matching result at equal distance")
	}
}

func TestScoreResultSubstringBonus(t *testing.T) {
	match := SearchResult{DisplayName: "Parque Lleras, Medellin", Lat: cityCenterLat, Lon: cityCenterLon}

	long := scoreResult(match, 0, "Parque Lleras", false)
	short := scoreResult(match, 0, "Parqu", false)
	// Only the >= 6 rune squeezed query earns the substring bonus.
	if long-short < scoreSubstring-scoreAlphaToken*2 {
		t.Fatalf("substring bonus missing: long=%v short=%v", long, short)
	}
}

func TestScoreResultProximityDecays(t *testing.T) {
	near := SearchResult{DisplayName: "x", Lat: cityCenterLat, Lon: cityCenterLon}
	far := SearchResult{DisplayName: "x", Lat: 4.7110, Lon: -74.0721}

	nearScore := scoreResult(near, 0, "zzzz", false)
	farScore := scoreResult(far, 0, "zzzz", false)
	if nearScore-farScore != scoreProximityMax {
		// The far result is beyond the decay radius, so it gets zero
		// proximity while the near one gets the full bonus.
		t.Fatalf("proximity delta = %v, want %v", nearScore-farScore, scoreProximityMax)
	}
}

func TestScoreResultImportanceScaling(t *testing.T) {
	r := SearchResult{DisplayName: "x", Lat: cityCenterLat, Lon: cityCenterLon}
	delta := scoreResult(r, 0.7, "zzzz", false) - scoreResult(r, 0, "zzzz", false)
	if math.Abs(delta-0.7*scoreImportanceMult) > 1e-9 {
		t.Fatalf("importance delta = %v, want %v", delta, 0.7*scoreImportanceMult)
	}
}

func TestScoreResultStrictPenalties(t *testing.T) {
	elsewhere := SearchResult{DisplayName: "Carrera 9, Envigado", Lat: 6.17, Lon: -75.59}

	q := "Calle 10 # 43"
	loose := scoreResult(elsewhere, 0, q, false)
	strict := scoreResult(elsewhere, 0, q, true)

	want := loose + scoreStrictNoCity + scoreStrictNoNums
	if math.Abs(strict-want) > 1e-9 {
		t.Fatalf("strict score = %v, want %v", strict, want)
	}
}

func TestScoreResultStrictNumericMatchAvoidsPenalty(t *testing.T) {
	withNumber := SearchResult{DisplayName: "Calle 10, Envigado", Lat: 6.17, Lon: -75.59}

	q := "Calle 10"
	loose := scoreResult(withNumber, 0, q, false)
	strict := scoreResult(withNumber, 0, q, true)

	want := loose + scoreStrictNoCity
	if math.Abs(strict-want) > 1e-9 {
		t.Fatalf("strict score = %v, want %v (only the city penalty)", strict, want)
	}
}
