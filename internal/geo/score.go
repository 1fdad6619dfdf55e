package geo

import (
	"math"
	"strings"
)

// Fixed reference coordinate for the target city (Medellin center).
const (
	cityCenterLat = 6.2442
	cityCenterLon = -75.5812
)

// Empirically tuned ranking weights. They encode local knowledge about the
// target city; changing any of them changes which matches users see, so they
// are kept exactly as tuned.
const (
	scoreCityName       = 60.0
	scoreRegionName     = 24.0
	scoreRivalCity      = -40.0
	scoreAlphaToken     = 8.0
	scoreNumericToken   = 16.0
	scoreSubstring      = 55.0
	scoreProximityMax   = 35.0
	scoreImportanceMult = 100.0
	scoreStrictNoCity   = -25.0
	scoreStrictNoNums   = -20.0
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// scoreResult assigns a relevance score to one normalized candidate against
// the original user query.
func scoreResult(result SearchResult, importance float64, query string, strict bool) float64 {
	dn := normalizeText(result.DisplayName)
	qn := normalizeText(query)
	alphaTokens := extractAlphaTokens(query)
	numericTokens := extractNumericTokens(query)

	var score float64

	if strings.Contains(dn, "medellin") {
		score += scoreCityName
	}
	if strings.Contains(dn, "antioquia") {
		score += scoreRegionName
	}
	if strings.Contains(dn, "bogota") && !strings.Contains(qn, "bogota") {
		score += scoreRivalCity
	}

	for _, token := range alphaTokens {
		if strings.Contains(dn, token) {
			score += scoreAlphaToken
		}
	}

	for _, token := range numericTokens {
		if strings.Contains(dn, token) {
			score += scoreNumericToken
		}
	}

	queryNoSpaces := strings.ReplaceAll(qn, " ", "")
	displayNoSpaces := strings.ReplaceAll(dn, " ", "")
	if len(queryNoSpaces) >= 6 && strings.Contains(displayNoSpaces, queryNoSpaces) {
		score += scoreSubstring
	}

	km := haversineKm(result.Lat, result.Lon, cityCenterLat, cityCenterLon)
	score += math.Max(0, scoreProximityMax-km)

	score += importance * scoreImportanceMult

	if strict {
		if !strings.Contains(dn, "medellin") {
			score += scoreStrictNoCity
		}
		if len(numericTokens) > 0 {
			matched := 0
			for _, token := range numericTokens {
				if strings.Contains(dn, token) {
					matched++
				}
			}
			if matched == 0 {
				score += scoreStrictNoNums
			}
		}
	}

	return score
}
