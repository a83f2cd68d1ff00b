package extractor

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/project-tktt/warn-crawler/internal/common/cleaner"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

var (
	mdSeparatorRow = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)
	mdLinkTarget   = regexp.MustCompile(`\]\((https?://[^)\s]+)`)
)

// maxMarkdownLine is the longest table row the scanner accepts
const maxMarkdownLine = 4 * 1024 * 1024

// MarkdownTableExtractor reads pipe tables from text-rendered pages, such as
// PDF listings passed through the text proxy
type MarkdownTableExtractor struct {
	cleaner *cleaner.Cleaner
}

func NewMarkdownTableExtractor() *MarkdownTableExtractor {
	return &MarkdownTableExtractor{cleaner: cleaner.NewStrictCleaner()}
}

func (e *MarkdownTableExtractor) Name() string {
	return "markdown_table"
}

// Extract reads every block of consecutive pipe-delimited lines as one table
func (e *MarkdownTableExtractor) Extract(body []byte, _ string) ([]domain.RawRecord, error) {
	var records []domain.RawRecord
	found := false

	flush := func(rows [][]string, links []string) {
		if len(rows) == 0 {
			return
		}
		recs, err := recordsFromRows(rows, links)
		if err != nil {
			return
		}
		found = true
		records = append(records, recs...)
	}

	var rows [][]string
	var links []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), maxMarkdownLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "|") {
			flush(rows, links)
			rows, links = nil, nil
			continue
		}
		if mdSeparatorRow.MatchString(line) {
			continue
		}

		link := ""
		if m := mdLinkTarget.FindStringSubmatch(line); m != nil {
			link = m[1]
		}
		rows = append(rows, e.splitRow(line))
		links = append(links, link)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	flush(rows, links)

	if !found {
		return nil, ErrNoTable
	}
	return records, nil
}

func (e *MarkdownTableExtractor) splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = e.cleaner.CleanToText(e.cleaner.StripMarkdown(strings.TrimSpace(p)))
	}
	return cells
}
