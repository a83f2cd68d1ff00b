package scoring

import (
	"strings"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

const (
	gatePoints         = 30
	keywordPoints      = 10
	keywordCap         = 40
	settingPoints      = 10
	largeLayoffPoints  = 10
	mediumLayoffPoints = 5

	largeLayoff  = 200
	mediumLayoff = 50

	likelyThreshold   = 80
	possibleThreshold = 50

	roleBaseline  = 30
	roleKeywordUp = 20
)

// settingRoleBias is added to the RN/LPN/CNA weights for an inferred setting
var settingRoleBias = map[domain.CareSetting][3]int{
	domain.SettingAcute:      {20, 0, 0},
	domain.SettingSNF:        {0, 10, 15},
	domain.SettingOutpatient: {10, 0, 0},
	domain.SettingHome:       {10, 5, 0},
	domain.SettingBehavioral: {10, 0, 0},
}

// Score classifies a notice's relevance to the nursing workforce. It reads
// only the notice's own fields, so calling it twice on the same notice
// yields identical output.
func Score(n *domain.NormalizedNotice) *domain.NursingImpact {
	text := corpus(n)
	var tags tagSet
	score := 0

	// 1. healthcare gate
	gate := false
	if strings.HasPrefix(strings.TrimSpace(n.IndustryCode), healthcareNAICS) {
		gate = true
		tags.add("healthcare:naics")
	}
	if kw, ok := firstMatch(healthcareContext, text); ok {
		gate = true
		tags.add("healthcare:context:" + kw)
	}
	if gate {
		score += gatePoints
	}

	// 2. nursing keyword density
	keywords := allMatches(nursingKeywords, text)
	if len(keywords) > 0 {
		score += min(keywordCap, keywordPoints*len(keywords))
		for _, kw := range keywords {
			tags.add("keyword:" + kw)
		}
	}

	// 3. care setting
	setting := inferSetting(n.IndustryCode, text)
	if setting != domain.SettingUnknown {
		score += settingPoints
		tags.add("setting:" + string(setting))
	}

	impact := &domain.NursingImpact{
		KeywordsFound: nonNil(keywords),
		CareSetting:   setting,
		Specialties:   []string{},
	}

	_, occupational := firstMatch(occupationalTerms, text)
	if gate || len(keywords) > 0 || occupational {
		// 4. role mix
		impact.RoleMix = roleMix(setting, text)
		tags.add("rolemix")

		// 5. specialties
		for _, sp := range specialtyTable {
			if _, ok := firstMatch(sp.terms, text); ok {
				impact.Specialties = append(impact.Specialties, sp.name)
				tags.add("specialty:" + sp.name)
			}
		}
	}

	// 6. magnitude
	if n.EmployeesAffected != nil {
		switch {
		case *n.EmployeesAffected >= largeLayoff:
			score += largeLayoffPoints
			tags.add("magnitude:200+")
		case *n.EmployeesAffected >= mediumLayoff:
			score += mediumLayoffPoints
			tags.add("magnitude:50+")
		}
	}

	impact.Score = clamp(score, 0, 100)
	impact.Label = label(impact.Score)
	impact.Signals = tags.list()
	impact.Explanations = tags.list()
	return impact
}

// Apply recomputes and stores the impact of n
func Apply(n *domain.NormalizedNotice) {
	n.Impact = Score(n)
}

func corpus(n *domain.NormalizedNotice) string {
	return strings.Join([]string{n.EmployerName, n.Reason, n.RawText}, "\n")
}

func inferSetting(naics, text string) domain.CareSetting {
	naics = strings.TrimSpace(naics)
	for _, m := range naicsSettings {
		if strings.HasPrefix(naics, m.prefix) {
			return m.setting
		}
	}
	for _, c := range settingCategories {
		if _, ok := firstMatch(c.terms, text); ok {
			return c.setting
		}
	}
	return domain.SettingUnknown
}

func roleMix(setting domain.CareSetting, text string) *domain.RoleMix {
	if setting == domain.SettingOccupational {
		return &domain.RoleMix{RN: 100}
	}

	w := [3]int{roleBaseline, roleBaseline, roleBaseline}
	for i, terms := range [3][]term{rnTerms, lpnTerms, cnaTerms} {
		w[i] += roleKeywordUp * len(allMatches(terms, text))
	}
	bias := settingRoleBias[setting]
	for i := range w {
		w[i] += bias[i]
	}

	pct := largestRemainder(w)
	return &domain.RoleMix{RN: pct[0], LPN: pct[1], CNA: pct[2]}
}

// largestRemainder converts weights to integer percentages summing to exactly 100.
// Leftover points go to the largest fractional parts; ties favor RN, then LPN.
func largestRemainder(w [3]int) [3]int {
	total := w[0] + w[1] + w[2]
	var out, rem [3]int
	given := 0
	for i := range w {
		out[i] = w[i] * 100 / total
		rem[i] = w[i] * 100 % total
		given += out[i]
	}
	for ; given < 100; given++ {
		best := 0
		for i := 1; i < 3; i++ {
			if rem[i] > rem[best] {
				best = i
			}
		}
		out[best]++
		rem[best] = -1
	}
	return out
}

func label(score int) domain.ImpactLabel {
	switch {
	case score >= likelyThreshold:
		return domain.LabelLikely
	case score >= possibleThreshold:
		return domain.LabelPossible
	default:
		return domain.LabelUnclear
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// tagSet keeps audit tags unique in first-seen order
type tagSet struct {
	order []string
	seen  map[string]bool
}

func (t *tagSet) add(tag string) {
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	if t.seen[tag] {
		return
	}
	t.seen[tag] = true
	t.order = append(t.order, tag)
}

// list returns a fresh copy so Signals and Explanations never alias
func (t *tagSet) list() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
