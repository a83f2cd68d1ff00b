package dedup

import (
	"github.com/project-tktt/warn-crawler/internal/common/scoring"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// Merge combines two notices that share an id. It is left-biased: a keeps its
// provenance and every non-empty field, and b only fills what a lacks.
// The impact is recomputed from the merged fields. Merging b in again
// changes nothing.
func Merge(a, b *domain.NormalizedNotice) *domain.NormalizedNotice {
	m := clone(a)

	fillString(&m.EmployerName, b.EmployerName)
	fillString(&m.ParentSystem, b.ParentSystem)
	fillString(&m.City, b.City)
	fillString(&m.County, b.County)
	fillString(&m.Address, b.Address)
	fillString(&m.IndustryCode, b.IndustryCode)
	fillString(&m.Reason, b.Reason)
	fillString(&m.RawText, b.RawText)

	if m.NoticeDate == nil && b.NoticeDate != nil {
		d := *b.NoticeDate
		m.NoticeDate = &d
	}
	if m.EffectiveDate == nil && b.EffectiveDate != nil {
		d := *b.EffectiveDate
		m.EffectiveDate = &d
	}
	if m.EmployeesAffected == nil && b.EmployeesAffected != nil {
		c := *b.EmployeesAffected
		m.EmployeesAffected = &c
	}
	if len(m.Attachments) == 0 && len(b.Attachments) > 0 {
		m.Attachments = append([]domain.Attachment(nil), b.Attachments...)
	}
	if m.Jurisdiction == "" {
		m.Jurisdiction = b.Jurisdiction
	}
	if m.ID == "" {
		m.ID = ComputeID(m)
	}

	scoring.Apply(m)
	return m
}

// MergeAll collapses notices by id, keeping first-seen order. Callers list
// notices in source precedence order so the most authoritative record governs.
func MergeAll(notices []domain.NormalizedNotice) []domain.NormalizedNotice {
	index := make(map[string]int, len(notices))
	out := make([]domain.NormalizedNotice, 0, len(notices))

	for i := range notices {
		n := &notices[i]
		if n.EmployerName == "" {
			continue
		}
		id := n.ID
		if id == "" {
			id = ComputeID(n)
		}

		if at, ok := index[id]; ok {
			out[at] = *Merge(&out[at], n)
			continue
		}

		c := clone(n)
		c.ID = id
		if c.Impact == nil {
			scoring.Apply(c)
		}
		index[id] = len(out)
		out = append(out, *c)
	}
	return out
}

// Finalize stamps identity and impact on a freshly normalized notice
func Finalize(n *domain.NormalizedNotice) {
	n.ID = ComputeID(n)
	scoring.Apply(n)
}

func fillString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func clone(n *domain.NormalizedNotice) *domain.NormalizedNotice {
	c := *n
	if n.NoticeDate != nil {
		d := *n.NoticeDate
		c.NoticeDate = &d
	}
	if n.EffectiveDate != nil {
		d := *n.EffectiveDate
		c.EffectiveDate = &d
	}
	if n.EmployeesAffected != nil {
		v := *n.EmployeesAffected
		c.EmployeesAffected = &v
	}
	if n.Attachments != nil {
		c.Attachments = append([]domain.Attachment(nil), n.Attachments...)
	}
	c.Impact = nil
	return &c
}
