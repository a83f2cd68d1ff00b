package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are dropped from the end of employer names before identity hashing
var legalSuffixes = map[string]bool{
	"inc": true, "incorporated": true,
	"llc": true, "llp": true, "lp": true, "pllc": true, "pc": true, "plc": true,
	"corp": true, "corporation": true,
	"co": true, "company": true,
	"ltd": true, "limited": true,
	"dba": true,
}

// foldDiacritics turns "Clínica Méndez" into "Clinica Mendez"
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// tokens lowercases, drops periods and apostrophes (so "L.L.C." -> "llc"),
// and splits on anything that is not a letter or digit
func tokens(s string) []string {
	s = strings.ToLower(foldDiacritics(s))
	s = strings.NewReplacer(".", "", "'", "", "’", "", "&", " and ").Replace(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NormalizeText lowercases, strips punctuation and collapses whitespace
func NormalizeText(s string) string {
	return strings.Join(tokens(s), " ")
}

// NormalizeName is NormalizeText plus removal of trailing legal suffixes
// (Inc, LLC, Corp, ...). A name made only of suffixes keeps its first token.
func NormalizeName(s string) string {
	toks := tokens(s)
	end := len(toks)
	for end > 1 && legalSuffixes[toks[end-1]] {
		end--
	}
	return strings.Join(toks[:end], " ")
}

// CollapseSpace trims and collapses runs of whitespace for display values
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
