package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// HTMLTableExtractor maps <table> markup with the header-synonym heuristic
type HTMLTableExtractor struct {
	// TableSelector narrows which tables are read, default "table"
	TableSelector string
}

// NewHTMLTableExtractor creates an extractor for tables matching selector
func NewHTMLTableExtractor(selector string) *HTMLTableExtractor {
	if selector == "" {
		selector = "table"
	}
	return &HTMLTableExtractor{TableSelector: selector}
}

func (e *HTMLTableExtractor) Name() string {
	return "html_table"
}

// Extract reads every matching table that has a header row. Tables without
// one are skipped; ErrNoTable is returned only when none qualified.
func (e *HTMLTableExtractor) Extract(body []byte, baseURL string) ([]domain.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return e.ExtractDocument(doc.Selection, baseURL)
}

// ExtractDocument works on an already parsed document or fragment
func (e *HTMLTableExtractor) ExtractDocument(sel *goquery.Selection, baseURL string) ([]domain.RawRecord, error) {
	var base *url.URL
	if baseURL != "" {
		base, _ = url.Parse(baseURL)
	}

	var records []domain.RawRecord
	found := false
	sel.Find(e.TableSelector).Each(func(_ int, table *goquery.Selection) {
		rows, links := tableRows(table, base)
		recs, err := recordsFromRows(rows, links)
		if err != nil {
			return
		}
		found = true
		records = append(records, recs...)
	})

	if !found {
		return nil, ErrNoTable
	}
	return records, nil
}

// tableRows flattens a table into cell text plus the first href of each row.
// Nested tables are not descended into.
func tableRows(table *goquery.Selection, base *url.URL) ([][]string, []string) {
	var rows [][]string
	var links []string

	table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.ParentsFiltered("table").First().IsSelection(table)
	}).Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(cells) == 0 {
			return
		}

		link := ""
		if href, ok := tr.Find("a[href]").First().Attr("href"); ok {
			link = resolve(base, href)
		}
		rows = append(rows, cells)
		links = append(links, link)
	})
	return rows, links
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}
