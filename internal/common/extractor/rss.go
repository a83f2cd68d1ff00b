package extractor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/project-tktt/warn-crawler/internal/common/cleaner"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

var (
	// "<Employer> to lay off 120 workers", "<Employer> lays off ...", "<Employer> files WARN notice"
	headlineEmployer = regexp.MustCompile(`(?i)^(.{3,120}?)\s+(?:to\s+lay\s*off|lays\s*off|laying\s*off|will\s+lay\s*off|plans\s+to\s+lay\s*off|announces\s+layoffs|to\s+cut|cuts|cutting|to\s+close|closing|will\s+close|files\s+warn|issues\s+warn|sends\s+warn)\b`)
	headlineCount    = regexp.MustCompile(`(?i)\b(\d[\d,]*)\s+(?:\w+\s+)?(?:workers|employees|jobs|positions|staff|nurses|people)\b`)
	// trailing " - Publisher" added by news search feeds
	publisherSuffix = regexp.MustCompile(`\s+[-|–]\s+[^-|–]{2,60}$`)
)

var rssDateLayouts = []string{time.RFC1123Z, time.RFC1123, "Mon, 2 Jan 2006 15:04:05 -0700", "Mon, 2 Jan 2006 15:04:05 MST", time.RFC3339}

// RSSExtractor turns news search results into candidate notices. Only
// headlines that name an employer in a layoff phrase are kept.
type RSSExtractor struct {
	cleaner *cleaner.Cleaner
}

func NewRSSExtractor() *RSSExtractor {
	return &RSSExtractor{cleaner: cleaner.NewStrictCleaner()}
}

func (e *RSSExtractor) Name() string {
	return "rss"
}

func (e *RSSExtractor) Extract(body []byte, _ string) ([]domain.RawRecord, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	var records []domain.RawRecord
	for _, item := range xmlquery.Find(doc, "//item") {
		title := childText(item, "title")
		employer, ok := EmployerFromHeadline(title)
		if !ok {
			continue
		}

		desc := e.cleaner.CleanToText(childText(item, "description"))
		rec := domain.RawRecord{
			domain.FieldEmployer: employer,
			domain.FieldReason:   strings.TrimSpace(publisherSuffix.ReplaceAllString(title, "")),
			domain.FieldRawText:  strings.TrimSpace(title + " " + desc),
		}
		if link := childText(item, "link"); link != "" {
			rec[domain.FieldLink] = link
			rec[domain.FieldRecordID] = link
		}
		if guid := childText(item, "guid"); guid != "" {
			rec[domain.FieldRecordID] = guid
		}
		if m := headlineCount.FindStringSubmatch(title); m != nil {
			rec[domain.FieldEmployees] = m[1]
		}
		if d := parseFeedDate(childText(item, "pubDate")); d != "" {
			rec[domain.FieldNoticeDate] = d
		}
		records = append(records, rec)
	}
	return records, nil
}

// EmployerFromHeadline pulls the subject out of a layoff headline
func EmployerFromHeadline(title string) (string, bool) {
	title = strings.TrimSpace(publisherSuffix.ReplaceAllString(title, ""))
	m := headlineEmployer.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	employer := strings.Trim(strings.TrimSpace(m[1]), `"'“”:,`)
	if employer == "" {
		return "", false
	}
	return employer, true
}

func childText(n *xmlquery.Node, name string) string {
	if c := n.SelectElement(name); c != nil {
		return strings.TrimSpace(c.InnerText())
	}
	return ""
}

// parseFeedDate renders an RSS timestamp as YYYY-MM-DD for the date normalizer
func parseFeedDate(s string) string {
	for _, layout := range rssDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}
