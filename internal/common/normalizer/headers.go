package normalizer

import (
	"strings"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

// fieldMatcher recognizes one semantic field from a normalized header string
type fieldMatcher struct {
	field Field
	// phrases matched as whole words anywhere in the header
	synonyms []string
	// headers that must equal one of these exactly
	exact []string
	// a header containing any of these words is never this field
	exclude []string
}

type Field = domain.Field

// fieldMatchers are evaluated in order; each field claims the first unclaimed
// header that matches it. The order resolves overlaps such as "Company Address"
// (address, not employer) and "Layoff Type" (reason, not a date).
var fieldMatchers = []fieldMatcher{
	{
		field:    domain.FieldNoticeDate,
		synonyms: []string{"notice date", "date of notice", "received", "warn date", "notification date", "posted", "filed", "letter date", "notice received"},
		exact:    []string{"date", "notice"},
	},
	{
		field:    domain.FieldEffectiveDate,
		synonyms: []string{"layoff", "effective", "impact", "termination", "closure", "separation"},
		exclude:  []string{"type", "reason", "number", "employees", "workers", "count", "total", "event", "status", "affected", "jobs"},
	},
	{
		field:    domain.FieldEmployees,
		synonyms: []string{"employees", "workers", "affected", "headcount", "number", "jobs", "positions", "total", "count"},
		// "WARN Number", "Notice No", "Case ID" identify the filing, not a count
		exclude: []string{"date", "warn", "notice", "id", "case", "log", "record"},
	},
	{
		field:    domain.FieldAddress,
		synonyms: []string{"address", "street"},
	},
	{
		field:    domain.FieldCity,
		synonyms: []string{"city", "town", "municipality", "location", "locality"},
	},
	{
		field:    domain.FieldCounty,
		synonyms: []string{"county", "parish", "workforce area", "lwda", "region"},
	},
	{
		field: domain.FieldState,
		exact: []string{"state", "st", "state code", "jurisdiction"},
	},
	{
		field:    domain.FieldParentSystem,
		synonyms: []string{"parent", "parent company", "corporate parent", "health system"},
	},
	{
		field:    domain.FieldEmployer,
		synonyms: []string{"employer", "company", "business", "establishment", "facility", "organization"},
	},
	{
		field:    domain.FieldIndustry,
		synonyms: []string{"naics", "industry", "sector", "sic"},
	},
	{
		field:    domain.FieldReason,
		synonyms: []string{"reason", "type", "event", "cause", "notes", "comments", "description"},
	},
	{
		field:    domain.FieldRecordID,
		synonyms: []string{"warn number", "notice number", "id", "record", "case", "log number"},
	},
	{
		field:    domain.FieldLink,
		synonyms: []string{"link", "url", "pdf", "document"},
	},
}

// headerVocabulary is every word that may appear in a header cell
var headerVocabulary = func() map[string]bool {
	v := map[string]bool{"name": true, "of": true, "the": true, "no": true, "date": true, "and": true, "or": true, "in": true, "warn": true, "notice": true}
	for _, m := range fieldMatchers {
		for _, group := range [][]string{m.synonyms, m.exact} {
			for _, phrase := range group {
				for _, w := range strings.Fields(phrase) {
					v[w] = true
				}
			}
		}
	}
	return v
}()

// NormalizeHeader lowercases and strips punctuation: "No. of Workers Affected:" -> "no of workers affected"
func NormalizeHeader(h string) string {
	return NormalizeText(h)
}

func containsPhrase(header, phrase string) bool {
	return strings.Contains(" "+header+" ", " "+phrase+" ")
}

func (m fieldMatcher) matches(header string) bool {
	if header == "" {
		return false
	}
	for _, ex := range m.exclude {
		if containsPhrase(header, ex) {
			return false
		}
	}
	for _, e := range m.exact {
		if header == e {
			return true
		}
	}
	for _, syn := range m.synonyms {
		if containsPhrase(header, syn) {
			return true
		}
	}
	return false
}

// MatchHeaders maps each recognized field to its column index.
// Unmatched columns are ignored.
func MatchHeaders(headers []string) map[Field]int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	out := make(map[Field]int)
	claimed := make(map[int]bool)
	for _, m := range fieldMatchers {
		for i, h := range normalized {
			if claimed[i] || !m.matches(h) {
				continue
			}
			out[m.field] = i
			claimed[i] = true
			break
		}
	}
	return out
}

// LooksLikeHeaderCell reports whether a cell reads like a column title:
// a short phrase built only from header vocabulary that names some field.
// "Company Name" is a header; "Business Solutions Inc" is not.
func LooksLikeHeaderCell(cell string) bool {
	h := NormalizeHeader(cell)
	words := strings.Fields(h)
	if len(words) == 0 || len(words) > 6 {
		return false
	}
	for _, w := range words {
		if !headerVocabulary[w] {
			return false
		}
	}
	for _, m := range fieldMatchers {
		if m.matches(h) {
			return true
		}
	}
	return false
}

// LooksLikeHeaderRow requires at least two header-like cells and an employer column
func LooksLikeHeaderRow(cells []string) bool {
	n := 0
	for _, c := range cells {
		if LooksLikeHeaderCell(c) {
			n++
		}
	}
	if n < 2 {
		return false
	}
	_, ok := MatchHeaders(cells)[domain.FieldEmployer]
	return ok
}

// FindHeaderRow returns the index of the first header-like row among the
// first maxScan rows. When none qualifies, row 0 is used if it at least maps
// an employer column. -1 means no usable header.
func FindHeaderRow(rows [][]string, maxScan int) int {
	if maxScan <= 0 || maxScan > len(rows) {
		maxScan = len(rows)
	}
	for i := 0; i < maxScan; i++ {
		if LooksLikeHeaderRow(rows[i]) {
			return i
		}
	}
	if len(rows) > 0 {
		if _, ok := MatchHeaders(rows[0])[domain.FieldEmployer]; ok {
			return 0
		}
	}
	return -1
}

// RecordFromRow applies a header mapping to a data row. Rows whose first cell
// repeats a header are skipped (ok=false), as are rows with no employer cell.
func RecordFromRow(mapping map[Field]int, row []string) (domain.RawRecord, bool) {
	if len(row) == 0 || LooksLikeHeaderCell(row[0]) {
		return nil, false
	}
	rec := make(domain.RawRecord, len(mapping)+1)
	var raw []string
	for field, idx := range mapping {
		if idx < len(row) {
			if v := strings.TrimSpace(row[idx]); v != "" {
				rec[field] = v
			}
		}
	}
	for _, c := range row {
		if c = CollapseSpace(c); c != "" {
			raw = append(raw, c)
		}
	}
	if rec[domain.FieldEmployer] == "" {
		return nil, false
	}
	rec[domain.FieldRawText] = strings.Join(raw, " | ")
	return rec, true
}
