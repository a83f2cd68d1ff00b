package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// ElasticsearchIndexer makes notices searchable by employer, place and impact
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	log       *logger.Logger
}

// NewElasticsearchIndexer connects to the cluster and checks it answers
func NewElasticsearchIndexer(addresses []string, indexName string, log *logger.Logger) (*ElasticsearchIndexer, error) {
	if indexName == "" {
		indexName = "warn-notices"
	}
	if log == nil {
		log = logger.NewNop()
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es info: %s", res.Status())
	}

	return &ElasticsearchIndexer{client: client, indexName: indexName, log: log}, nil
}

// bulkAction is the metadata line preceding each document
type bulkAction struct {
	Index struct {
		Index string `json:"_index"`
		ID    string `json:"_id"`
	} `json:"index"`
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

// encodeBulk writes action/document line pairs. Notices that fail to encode
// are skipped; the number written is returned.
func (i *ElasticsearchIndexer) encodeBulk(buf *bytes.Buffer, notices []*domain.NormalizedNotice) int {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	written := 0
	for _, n := range notices {
		doc, err := json.Marshal(n)
		if err != nil {
			i.log.Warn("marshal notice", "id", n.ID, "error", err)
			continue
		}
		var action bulkAction
		action.Index.Index = i.indexName
		action.Index.ID = n.ID
		if err := enc.Encode(action); err != nil {
			continue
		}
		buf.Write(doc)
		buf.WriteByte('\n')
		written++
	}
	return written
}

// BulkIndex upserts notices by id. Rejected items are logged; the call fails
// only when the whole request fails or every item was rejected.
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, notices []*domain.NormalizedNotice) error {
	var buf bytes.Buffer
	sent := i.encodeBulk(&buf, notices)
	if sent == 0 {
		return nil
	}

	res, err := i.client.Bulk(&buf, i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk request: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !parsed.Errors {
		return nil
	}

	rejected := 0
	for _, entry := range parsed.Items {
		for _, item := range entry {
			if item.Status < 300 {
				continue
			}
			rejected++
			i.log.Warn("notice rejected", "id", item.ID, "type", item.Error.Type, "reason", item.Error.Reason)
		}
	}
	if rejected == sent {
		return fmt.Errorf("bulk index: all %d items rejected", rejected)
	}
	return nil
}

func keyword() map[string]any { return map[string]any{"type": "keyword"} }
func folded() map[string]any  { return map[string]any{"type": "text", "analyzer": "folding_analyzer"} }
func day() map[string]any     { return map[string]any{"type": "date", "format": "yyyy-MM-dd"} }

// noticeMapping folds diacritics in names and free text so "Clinica Mendez"
// finds "Clínica Méndez"
var noticeMapping = map[string]any{
	"settings": map[string]any{
		"analysis": map[string]any{
			"analyzer": map[string]any{
				"folding_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "asciifolding"},
				},
			},
		},
	},
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           keyword(),
			"jurisdiction": keyword(),
			"employerName": map[string]any{
				"type":     "text",
				"analyzer": "folding_analyzer",
				"fields":   map[string]any{"keyword": keyword()},
			},
			"parentSystem":      folded(),
			"city":              keyword(),
			"county":            keyword(),
			"address":           map[string]any{"type": "text"},
			"noticeDate":        day(),
			"effectiveDate":     day(),
			"employeesAffected": map[string]any{"type": "integer"},
			"industryCode":      keyword(),
			"reason":            folded(),
			"rawText":           folded(),
			"provenance": map[string]any{"properties": map[string]any{
				"providerName":     keyword(),
				"providerUrl":      keyword(),
				"providerRecordId": keyword(),
				"retrievedAt":      map[string]any{"type": "date"},
			}},
			"impact": map[string]any{"properties": map[string]any{
				"score":         map[string]any{"type": "integer"},
				"label":         keyword(),
				"careSetting":   keyword(),
				"signals":       keyword(),
				"explanations":  keyword(),
				"keywordsFound": keyword(),
				"specialties":   keyword(),
			}},
		},
	},
}

// EnsureIndex creates the index with the notice mapping when it is missing
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(noticeMapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(bytes.NewReader(body)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.indexName, res.Status())
	}

	i.log.Info("created index", "index", i.indexName)
	return nil
}
