package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExtractor reads delimited text exports
type CSVExtractor struct {
	Comma rune
}

// NewCSVExtractor creates a comma-separated extractor; pass '\t' for TSV
func NewCSVExtractor(comma rune) *CSVExtractor {
	if comma == 0 {
		comma = ','
	}
	return &CSVExtractor{Comma: comma}
}

func (e *CSVExtractor) Name() string {
	return "csv"
}

func (e *CSVExtractor) Extract(body []byte, _ string) ([]domain.RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	r.Comma = e.Comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// keep what parsed before a malformed tail
			if len(rows) > 0 {
				break
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return recordsFromRows(rows, nil)
}
