package normalizer

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/cleaner"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// ErrMissingEmployer marks a row that cannot become a notice; callers drop it silently
var ErrMissingEmployer = errors.New("missing employer name")

var leadingCode = regexp.MustCompile(`^\s*(\d{2,6})\b`)

// Source describes where a raw record came from
type Source struct {
	Jurisdiction domain.StateCode
	ProviderName string
	ProviderURL  string
	RetrievedAt  time.Time
}

// Normalizer converts RawRecord to the NormalizedNotice shape
type Normalizer struct {
	cleaner *cleaner.Cleaner
}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{cleaner: cleaner.NewStrictCleaner()}
}

// Normalize builds a notice from one raw record. Identity and impact are not
// set here; they are derived from the finished fields by the caller.
func (n *Normalizer) Normalize(raw domain.RawRecord, src Source) (*domain.NormalizedNotice, error) {
	employer := n.text(raw.Get(domain.FieldEmployer))
	if NormalizeName(employer) == "" {
		return nil, ErrMissingEmployer
	}

	jurisdiction := src.Jurisdiction
	if jurisdiction == "" {
		if code, ok := domain.ParseStateCode(raw.Get(domain.FieldState)); ok {
			jurisdiction = code
		}
	}

	notice := &domain.NormalizedNotice{
		Jurisdiction:      jurisdiction,
		EmployerName:      employer,
		ParentSystem:      n.text(raw.Get(domain.FieldParentSystem)),
		City:              n.text(raw.Get(domain.FieldCity)),
		County:            n.text(raw.Get(domain.FieldCounty)),
		Address:           n.text(raw.Get(domain.FieldAddress)),
		NoticeDate:        ParseDate(raw.Get(domain.FieldNoticeDate)),
		EffectiveDate:     ParseDate(raw.Get(domain.FieldEffectiveDate)),
		EmployeesAffected: ParseCount(raw.Get(domain.FieldEmployees)),
		IndustryCode:      industryCode(n.text(raw.Get(domain.FieldIndustry))),
		Reason:            n.text(raw.Get(domain.FieldReason)),
		RawText:           n.text(raw.Get(domain.FieldRawText)),
		Provenance: domain.Provenance{
			ProviderName:     src.ProviderName,
			ProviderURL:      src.ProviderURL,
			ProviderRecordID: n.text(raw.Get(domain.FieldRecordID)),
			RetrievedAt:      src.RetrievedAt,
		},
	}

	if link := strings.TrimSpace(raw.Get(domain.FieldLink)); strings.HasPrefix(link, "http") {
		notice.Attachments = []domain.Attachment{{
			URL:      link,
			Label:    "WARN notice",
			MimeType: mimeFromURL(link),
		}}
	}

	return notice, nil
}

// text strips markup, decodes entities and collapses whitespace
func (n *Normalizer) text(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>") {
		s = n.cleaner.CleanToText(s)
	}
	return CollapseSpace(html.UnescapeString(s))
}

// industryCode keeps the leading NAICS digits of values like "622110 - General Hospitals"
func industryCode(s string) string {
	if m := leadingCode.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func mimeFromURL(u string) string {
	lower := strings.ToLower(u)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(lower, ".csv"):
		return "text/csv"
	case strings.HasSuffix(lower, ".htm"), strings.HasSuffix(lower, ".html"):
		return "text/html"
	}
	return ""
}
