package extractor

import (
	"bytes"
	"fmt"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/xuri/excelize/v2"
)

// SpreadsheetExtractor maps rows of an .xlsx workbook
type SpreadsheetExtractor struct {
	// Sheet limits extraction to one sheet; empty reads all sheets in order
	Sheet string
}

// NewSpreadsheetExtractor creates an extractor for the named sheet (or all sheets)
func NewSpreadsheetExtractor(sheet string) *SpreadsheetExtractor {
	return &SpreadsheetExtractor{Sheet: sheet}
}

func (e *SpreadsheetExtractor) Name() string {
	return "spreadsheet"
}

func (e *SpreadsheetExtractor) Extract(body []byte, _ string) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if e.Sheet != "" {
		sheets = []string{e.Sheet}
	}

	var records []domain.RawRecord
	found := false
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		recs, err := recordsFromRows(rows, nil)
		if err != nil {
			continue
		}
		found = true
		records = append(records, recs...)
	}

	if !found {
		return nil, ErrNoTable
	}
	return records, nil
}
