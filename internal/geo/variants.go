package geo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultCityHint is appended to query variants to bias the provider toward
// the metropolitan area this deployment serves.
const defaultCityHint = "Medellin, Antioquia, Colombia"

var (
	nonWordRe     = regexp.MustCompile(`[^a-z0-9_\s#-]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	commaSpaceRe  = regexp.MustCompile(`\s*,\s*`)
	hashSpaceRe   = regexp.MustCompile(`\s*#\s*`)
	hyphenSpaceRe = regexp.MustCompile(`\s*-\s*`)
	numericSplit  = regexp.MustCompile(`[\s#-]+`)
	numericToken  = regexp.MustCompile(`^\d+[a-z]?$`)
	hasLetterRe   = regexp.MustCompile(`[a-z]`)

	carreraRe = regexp.MustCompile(`(?i)(?:^|\s)(?:carrera|cra|kr|cr)\s*([0-9]+[a-zA-Z]?)\s*#\s*([0-9]+[a-zA-Z]?)`)
	calleRe   = regexp.MustCompile(`(?i)(?:^|\s)(?:calle|cl)\s*([0-9]+[a-zA-Z]?)\s*#\s*([0-9]+[a-zA-Z]?)`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// normalizeText lowercases, strips diacritics, collapses everything outside
// word characters, '#' and '-' to spaces, and squeezes whitespace. Total on
// all inputs.
func normalizeText(value string) string {
	lowered := strings.ToLower(value)
	if decomposed, _, err := transform.String(stripMarks, lowered); err == nil {
		lowered = decomposed
	}
	lowered = nonWordRe.ReplaceAllString(lowered, " ")
	lowered = whitespaceRe.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(lowered)
}

// extractAlphaTokens returns normalized tokens of length >= 2 that contain at
// least one letter.
func extractAlphaTokens(value string) []string {
	var tokens []string
	for _, tok := range strings.Split(normalizeText(value), " ") {
		tok = strings.TrimSpace(tok)
		if len(tok) >= 2 && hasLetterRe.MatchString(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// extractNumericTokens returns house/block number tokens: digits with an
// optional trailing letter (e.g. "45a").
func extractNumericTokens(value string) []string {
	var tokens []string
	for _, tok := range numericSplit.Split(normalizeText(value), -1) {
		tok = strings.TrimSpace(tok)
		if tok != "" && numericToken.MatchString(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// cleanQuery canonicalizes user-typed punctuation: single spaces, ", " after
// commas, '#' padded with one space on each side.
func cleanQuery(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	clean = commaSpaceRe.ReplaceAllString(clean, ", ")
	clean = hashSpaceRe.ReplaceAllString(clean, " # ")
	return strings.TrimSpace(clean)
}

// buildAddressVariants rewrites a free-text address into the ordered,
// deduplicated set of provider queries. Colombian addresses are typed in many
// punctuation styles ("Calle 10 # 43-12", "Cl 10 No 43 12", ...); each rewrite
// targets one of them, and every promising form is also combined with the
// city hint.
func buildAddressVariants(raw string) []string {
	clean := cleanQuery(raw)

	noHash := hashSpaceRe.ReplaceAllString(clean, " ")
	withNo := hashSpaceRe.ReplaceAllString(clean, " No ")
	noCommas := strings.ReplaceAll(withNo, ",", " ")
	hyphenNormalized := hyphenSpaceRe.ReplaceAllString(clean, "-")
	withNoHyphen := hashSpaceRe.ReplaceAllString(hyphenNormalized, " No ")

	var intersections []string
	if m := carreraRe.FindStringSubmatch(clean); m != nil {
		intersections = append(intersections, "Carrera "+strings.ToUpper(m[1])+" con Calle "+strings.ToUpper(m[2]))
	}
	if m := calleRe.FindStringSubmatch(clean); m != nil {
		intersections = append(intersections, "Calle "+strings.ToUpper(m[1])+" con Carrera "+strings.ToUpper(m[2]))
	}

	candidates := []string{
		clean,
		hyphenNormalized,
		withNo,
		noHash,
		noCommas,
		withNoHyphen,
		clean + ", " + defaultCityHint,
		withNo + ", " + defaultCityHint,
		clean + ", Medellin, Colombia",
		clean + ", Colombia",
	}
	candidates = append(candidates, intersections...)
	for _, q := range intersections {
		candidates = append(candidates, q+", "+defaultCityHint)
	}
	for _, q := range intersections {
		candidates = append(candidates, q+", Medellin, Colombia")
	}

	return dedupeVariants(candidates)
}

// strictVariants keeps only the raw query and its city-hinted form, trading
// recall for precision.
func strictVariants(query string) []string {
	return dedupeVariants([]string{query, query + ", " + defaultCityHint})
}

func dedupeVariants(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, q := range candidates {
		q = strings.TrimSpace(whitespaceRe.ReplaceAllString(q, " "))
		if len(q) < 3 {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
