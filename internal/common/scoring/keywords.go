package scoring

import (
	"regexp"
	"strings"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

// term is one keyword compiled to a word-boundary pattern that treats
// hyphens and whitespace as interchangeable ("on-site" ~ "on site")
type term struct {
	text string
	re   *regexp.Regexp
}

var separators = regexp.MustCompile(`[-\s]+`)

func compile(words ...string) []term {
	out := make([]term, len(words))
	for i, w := range words {
		parts := separators.Split(strings.ToLower(strings.TrimSpace(w)), -1)
		for j, p := range parts {
			parts[j] = regexp.QuoteMeta(p)
		}
		out[i] = term{
			text: w,
			re:   regexp.MustCompile(`(?i)\b` + strings.Join(parts, `[-\s]+`) + `\b`),
		}
	}
	return out
}

// firstMatch returns the first term found in text
func firstMatch(terms []term, text string) (string, bool) {
	for _, t := range terms {
		if t.re.MatchString(text) {
			return t.text, true
		}
	}
	return "", false
}

// allMatches returns every term found in text, in list order
func allMatches(terms []term, text string) []string {
	var out []string
	for _, t := range terms {
		if t.re.MatchString(text) {
			out = append(out, t.text)
		}
	}
	return out
}

// healthcareNAICS is the health care and social assistance supersector
const healthcareNAICS = "62"

var healthcareContext = compile(
	"hospital", "medical center", "health system", "clinic", "nursing", "rehab", "behavioral health", "hospice",
)

var (
	rnTerms  = compile("registered nurse", "registered nurses", "RN", "RNs", "charge nurse", "nurse practitioner", "nurse manager", "clinical nurse")
	lpnTerms = compile("LPN", "LPNs", "LVN", "licensed practical nurse", "licensed vocational nurse")
	cnaTerms = compile("CNA", "CNAs", "certified nursing assistant", "nursing assistant", "nurse aide", "patient care technician")

	occupationalTerms = compile("occupational health", "employee health", "on-site clinic", "workplace clinic", "industrial nurse", "occupational nurse", "workers compensation clinic")

	closureTerms = compile("unit closure", "bed closure", "closing beds", "closure of unit", "unit closing", "inpatient unit", "department closure", "service line closure", "wing closure")

	generalNursingTerms = compile("nurse", "nurses", "nursing", "skilled nursing", "nursing facility", "nursing home", "bedside", "patient care", "direct care")
)

// nursingKeywords is the density list: role titles, occupational-health
// terms and unit/bed closure language
var nursingKeywords = func() []term {
	var all []term
	for _, group := range [][]term{generalNursingTerms, rnTerms, lpnTerms, cnaTerms, occupationalTerms, closureTerms} {
		all = append(all, group...)
	}
	return all
}()

// settingCategory pairs a care setting with its keyword set; categories are
// checked in slice order and the first match wins
type settingCategory struct {
	setting domain.CareSetting
	terms   []term
}

var settingCategories = []settingCategory{
	{domain.SettingAcute, compile("hospital", "medical center", "acute care", "emergency department", "intensive care", "inpatient", "trauma center")},
	{domain.SettingSNF, compile("skilled nursing", "nursing home", "nursing facility", "nursing center", "long-term care", "assisted living", "post-acute", "SNF", "rehabilitation center", "care center")},
	{domain.SettingOutpatient, compile("clinic", "outpatient", "ambulatory", "urgent care", "surgery center", "physician practice", "medical group", "dialysis")},
	{domain.SettingHome, compile("home health", "home care", "hospice", "visiting nurse", "in-home", "private duty")},
	{domain.SettingBehavioral, compile("behavioral health", "psychiatric", "mental health", "substance use", "addiction", "detox")},
	{domain.SettingOccupational, occupationalTerms},
}

// naicsSettings maps industry-code prefixes, longest first
var naicsSettings = []struct {
	prefix  string
	setting domain.CareSetting
}{
	{"6222", domain.SettingBehavioral}, // psychiatric and substance abuse hospitals
	{"6232", domain.SettingBehavioral}, // residential mental health facilities
	{"6216", domain.SettingHome},       // home health care services
	{"6231", domain.SettingSNF},        // nursing care facilities
	{"6233", domain.SettingSNF},        // continuing care, assisted living
	{"623", domain.SettingSNF},
	{"622", domain.SettingAcute},
	{"621", domain.SettingOutpatient},
}

var specialtyTable = []struct {
	name  string
	terms []term
}{
	{"ICU", compile("ICU", "intensive care", "critical care", "NICU", "PICU")},
	{"ED", compile("emergency department", "emergency room", "emergency services", "ER")},
	{"OR", compile("operating room", "surgical services", "perioperative", "surgery department")},
	{"Med-Surg", compile("med-surg", "medical-surgical", "medical surgical")},
	{"OB", compile("labor and delivery", "obstetrics", "maternity", "birthing center", "women's services", "OB")},
	{"Oncology", compile("oncology", "cancer center", "infusion center")},
	{"Cardiac", compile("cardiac", "cardiology", "cath lab", "cardiovascular")},
}
