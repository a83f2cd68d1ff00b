package extractor

import (
	"errors"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/normalizer"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// ErrNoTable is returned when a document holds no table with a recognizable header row
var ErrNoTable = errors.New("no table with a recognizable header")

// headerScanRows bounds how far into a table the header row is searched for
const headerScanRows = 10

// Extractor turns one fetched document into raw records.
// Implementations: HTMLTable, CSV, Spreadsheet, MarkdownTable, JSON and RSS.
type Extractor interface {
	// Extract parses body; baseURL resolves relative links and may be empty
	Extract(body []byte, baseURL string) ([]domain.RawRecord, error)

	// Name returns the name of this extractor
	Name() string
}

// ExtractorConfig holds common configuration for network-backed extractors
type ExtractorConfig struct {
	UserAgent    string
	ProxyURL     string
	MaxRetries   int
	RequestDelay int // milliseconds
	MaxPages     int
	Timeout      time.Duration
	Backoff      time.Duration
}

// recordsFromRows locates the header row and maps every following row.
// links is optional and parallel to rows; a row's link fills FieldLink when
// the table has no link column.
func recordsFromRows(rows [][]string, links []string) ([]domain.RawRecord, error) {
	header := normalizer.FindHeaderRow(rows, headerScanRows)
	if header < 0 {
		return nil, ErrNoTable
	}

	mapping := normalizer.MatchHeaders(rows[header])
	_, hasLink := mapping[domain.FieldLink]

	records := make([]domain.RawRecord, 0, len(rows)-header-1)
	for i := header + 1; i < len(rows); i++ {
		rec, ok := normalizer.RecordFromRow(mapping, rows[i])
		if !ok {
			continue
		}
		if !hasLink && i < len(links) && links[i] != "" {
			rec[domain.FieldLink] = links[i]
		} else if hasLink && i < len(links) && links[i] != "" && !isURL(rec[domain.FieldLink]) {
			// link column holds anchor text; prefer the href behind it
			rec[domain.FieldLink] = links[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

func isURL(s string) bool {
	return len(s) > 4 && s[:4] == "http"
}
