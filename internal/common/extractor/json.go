package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/project-tktt/warn-crawler/internal/common/normalizer"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// JSONExtractor reads open-data APIs that return a list of flat objects,
// either as a top-level array or wrapped under a key ("data", "results", ...)
type JSONExtractor struct {
	// Key of the wrapping object, tried before the common defaults
	Key string
}

func NewJSONExtractor(key string) *JSONExtractor {
	return &JSONExtractor{Key: key}
}

func (e *JSONExtractor) Name() string {
	return "json"
}

func (e *JSONExtractor) Extract(body []byte, _ string) ([]domain.RawRecord, error) {
	items, err := e.items(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	// object keys act as the header row; sorted so the mapping is stable
	keySet := make(map[string]bool)
	for _, item := range items {
		for k := range item {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]string, len(keys))
	for i, k := range keys {
		headers[i] = splitCamel(k)
	}
	mapping := normalizer.MatchHeaders(headers)
	if _, ok := mapping[domain.FieldEmployer]; !ok {
		return nil, ErrNoTable
	}

	records := make([]domain.RawRecord, 0, len(items))
	for _, item := range items {
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = stringify(item[k])
		}
		if rec, ok := normalizer.RecordFromRow(mapping, row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (e *JSONExtractor) items(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	switch v := root.(type) {
	case []any:
		return objects(v), nil
	case map[string]any:
		for _, key := range []string{e.Key, "data", "results", "records", "items", "features"} {
			if key == "" {
				continue
			}
			if list, ok := v[key].([]any); ok {
				return objects(list), nil
			}
		}
	}
	return nil, fmt.Errorf("parse json: %w", ErrNoTable)
}

// objects keeps the object elements; GeoJSON features are unwrapped to their properties
func objects(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if props, ok := obj["properties"].(map[string]any); ok {
			obj = props
		}
		out = append(out, obj)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// splitCamel turns "companyName" and "notice_date" into "company Name" and "notice date"
func splitCamel(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper && prevLower {
			b.WriteByte(' ')
		}
		if r == '_' {
			b.WriteByte(' ')
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = r >= 'a' && r <= 'z'
	}
	return b.String()
}
