package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/common/fetcher"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// DocumentConfig describes a single-document official source
type DocumentConfig struct {
	Name         string
	Jurisdiction domain.StateCode
	URL          string
	Extractor    extractor.Extractor
	// TextProxy routes the request through the text-rendering proxy; use with
	// a MarkdownTableExtractor for PDF listings and script-rendered pages
	TextProxy bool
}

// Document fetches one URL and extracts it with the configured format extractor
type Document struct {
	base
	fetcher   *fetcher.Fetcher
	extractor extractor.Extractor
	textProxy bool
}

func NewDocument(cfg DocumentConfig, f *fetcher.Fetcher, log *logger.Logger) *Document {
	ext := cfg.Extractor
	if ext == nil {
		ext = extractor.NewHTMLTableExtractor("")
	}
	return &Document{
		base:      newBase(cfg.Name, cfg.URL, cfg.Jurisdiction, log),
		fetcher:   f,
		extractor: ext,
		textProxy: cfg.TextProxy,
	}
}

func (d *Document) Fetch(ctx context.Context) ([]domain.NormalizedNotice, error) {
	var (
		body []byte
		err  error
	)
	if d.textProxy {
		body, err = d.fetcher.GetText(ctx, d.url)
	} else {
		body, err = d.fetcher.Get(ctx, d.url)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.name, err)
	}

	records, err := d.extractor.Extract(body, d.url)
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", d.name, d.extractor.Name(), err)
	}

	return d.finalize(records, time.Now().UTC()), nil
}
