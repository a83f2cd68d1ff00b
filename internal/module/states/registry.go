package states

import (
	"fmt"
	"strings"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/common/fetcher"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/module"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
	"github.com/project-tktt/warn-crawler/internal/provider"
)

// Options wires the shared pieces every adapter needs
type Options struct {
	Fetcher *fetcher.Fetcher
	// Paginated listings use their own colly collector
	Collector extractor.ExtractorConfig

	// Cross-state fallbacks; an empty URL leaves that tier out
	AggregatorCSVURL   string
	AggregatorTableURL string
	NewsFeedURL        string
	FeedTTL            time.Duration

	// Per-jurisdiction minimum counts overriding the source defaults
	Thresholds map[domain.StateCode]int
	Observer   module.AttemptObserver
	Log        *logger.Logger
}

// Registry holds one adapter per jurisdiction in source-table order
type Registry struct {
	adapters []*module.FallbackAdapter
}

// NewRegistry builds the adapters. Each chain is: official listing, CSV
// aggregator, scraped-table aggregator, news search.
func NewRegistry(srcs []Source, opts Options) (*Registry, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("new registry: fetcher is required")
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}

	var csvFeed, tableFeed *provider.Feed
	if opts.AggregatorCSVURL != "" {
		csvFeed = provider.NewFeed("aggregator-csv", opts.AggregatorCSVURL, opts.Fetcher, extractor.NewCSVExtractor(','), opts.FeedTTL)
	}
	if opts.AggregatorTableURL != "" {
		tableFeed = provider.NewFeed("aggregator-table", opts.AggregatorTableURL, opts.Fetcher, extractor.NewHTMLTableExtractor(""), opts.FeedTTL)
	}

	r := &Registry{}
	seen := make(map[domain.StateCode]bool, len(srcs))
	for _, src := range srcs {
		if seen[src.Jurisdiction] {
			return nil, fmt.Errorf("new registry: duplicate jurisdiction %s", src.Jurisdiction)
		}
		seen[src.Jurisdiction] = true

		official, err := officialProvider(src, opts, log)
		if err != nil {
			return nil, fmt.Errorf("new registry: %w", err)
		}
		chain := []provider.Provider{official}
		if csvFeed != nil {
			chain = append(chain, provider.NewAggregator(csvFeed, src.Jurisdiction, log))
		}
		if tableFeed != nil {
			chain = append(chain, provider.NewAggregator(tableFeed, src.Jurisdiction, log))
		}
		if opts.NewsFeedURL != "" {
			chain = append(chain, provider.NewNews(opts.NewsFeedURL, src.Jurisdiction, opts.Fetcher, log))
		}

		minCount := src.MinCount
		if v, ok := opts.Thresholds[src.Jurisdiction]; ok {
			minCount = v
		}

		a := module.NewFallbackAdapter(src.Jurisdiction, module.StopOnMinimum(minCount), chain, log)
		if opts.Observer != nil {
			a.WithObserver(opts.Observer)
		}
		r.adapters = append(r.adapters, a)
	}
	return r, nil
}

func officialProvider(src Source, opts Options, log *logger.Logger) (provider.Provider, error) {
	name := src.Name
	if name == "" {
		name = strings.ToLower(string(src.Jurisdiction)) + "-official"
	}
	doc := provider.DocumentConfig{Name: name, Jurisdiction: src.Jurisdiction, URL: src.URL}

	switch src.Format {
	case FormatHTML, "":
		doc.Extractor = extractor.NewHTMLTableExtractor(src.Selector)
	case FormatCSV:
		doc.Extractor = extractor.NewCSVExtractor(',')
	case FormatXLSX:
		doc.Extractor = extractor.NewSpreadsheetExtractor(src.Selector)
	case FormatJSON:
		doc.Extractor = extractor.NewJSONExtractor(src.Selector)
	case FormatMarkdown:
		doc.Extractor = extractor.NewMarkdownTableExtractor()
		doc.TextProxy = true
	case FormatPaged:
		cfg := opts.Collector
		if cfg.UserAgent == "" {
			cfg.UserAgent = opts.Fetcher.Config().UserAgent
		}
		return provider.NewPaged(name, src.Jurisdiction, src.URL, src.Selectors, cfg, log), nil
	default:
		return nil, fmt.Errorf("%s: unknown format %q", src.Jurisdiction, src.Format)
	}
	return provider.NewDocument(doc, opts.Fetcher, log), nil
}

// Adapters returns every adapter as the orchestrator's input
func (r *Registry) Adapters() []module.Adapter {
	out := make([]module.Adapter, len(r.adapters))
	for i, a := range r.adapters {
		out[i] = a
	}
	return out
}

// Get returns the adapter for one jurisdiction
func (r *Registry) Get(code domain.StateCode) (*module.FallbackAdapter, bool) {
	for _, a := range r.adapters {
		if a.Jurisdiction() == code {
			return a, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int {
	return len(r.adapters)
}

// Filter keeps only the listed jurisdictions; an empty list keeps all
func (r *Registry) Filter(codes []domain.StateCode) *Registry {
	if len(codes) == 0 {
		return r
	}
	want := make(map[domain.StateCode]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	out := &Registry{}
	for _, a := range r.adapters {
		if want[a.Jurisdiction()] {
			out.adapters = append(out.adapters, a)
		}
	}
	return out
}

// ParseList parses a comma separated list such as "CA, ny,Texas"
func ParseList(s string) ([]domain.StateCode, error) {
	var out []domain.StateCode
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, ok := domain.ParseStateCode(part)
		if !ok {
			return nil, fmt.Errorf("unknown jurisdiction %q", part)
		}
		out = append(out, code)
	}
	return out, nil
}
