package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// Selectors defines CSS selectors for a paginated listing
type Selectors struct {
	// Table holds the notice rows, default "table"
	Table string
	// NextLink is the "next page" anchor; empty disables link following
	NextLink string
}

// CollyExtractor walks a paginated HTML listing with Colly and maps the
// tables on every page. Following the next link is optional; pages are
// deduplicated by URL and the walk stops at MaxPages regardless.
type CollyExtractor struct {
	collector *colly.Collector
	config    ExtractorConfig
	selectors Selectors
	table     *HTMLTableExtractor
}

// NewCollyExtractor creates a new Colly-based listing scraper
func NewCollyExtractor(selectors Selectors, config ExtractorConfig) *CollyExtractor {
	if config.MaxPages <= 0 {
		config.MaxPages = 20
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.Backoff <= 0 {
		config.Backoff = time.Second
	}

	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)

	if config.Timeout > 0 {
		c.SetRequestTimeout(config.Timeout)
	}

	// Configure rate limiting
	if config.RequestDelay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       time.Duration(config.RequestDelay) * time.Millisecond,
			RandomDelay: time.Duration(config.RequestDelay/2) * time.Millisecond,
		})
	}

	// Set proxy if configured
	if config.ProxyURL != "" {
		c.SetProxy(config.ProxyURL)
	}

	return &CollyExtractor{
		collector: c,
		config:    config,
		selectors: selectors,
		table:     NewHTMLTableExtractor(selectors.Table),
	}
}

func (e *CollyExtractor) Name() string {
	return "colly_listing"
}

// ExtractList visits startURL and every reachable next page. A failing later
// page ends the walk but keeps what was already collected; only a failure on
// the first page is returned as an error.
func (e *CollyExtractor) ExtractList(ctx context.Context, startURL string) ([]domain.RawRecord, int, error) {
	var (
		mu       sync.Mutex
		records  []domain.RawRecord
		pages    int
		lastErr  error
		anyTable bool
	)
	visited := make(map[string]bool)
	retries := make(map[string]int)

	collector := e.collector.Clone()
	collector.Context = ctx

	collector.OnResponse(func(r *colly.Response) {
		mu.Lock()
		defer mu.Unlock()

		visited[pageKey(r.Request.URL)] = true
		pages++

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			return
		}
		recs, err := e.table.ExtractDocument(doc.Selection, r.Request.URL.String())
		if err != nil {
			return
		}
		anyTable = true
		records = append(records, recs...)
	})

	if e.selectors.NextLink != "" {
		collector.OnHTML(e.selectors.NextLink, func(el *colly.HTMLElement) {
			next := el.Request.AbsoluteURL(el.Attr("href"))
			if next == "" {
				return
			}
			u, err := url.Parse(next)
			if err != nil {
				return
			}

			mu.Lock()
			stop := visited[pageKey(u)] || pages >= e.config.MaxPages
			if !stop {
				// reserve the page so a second matching anchor does not revisit it
				visited[pageKey(u)] = true
			}
			mu.Unlock()
			if stop {
				return
			}
			_ = el.Request.Visit(next)
		})
	}

	collector.OnError(func(r *colly.Response, err error) {
		key := pageKey(r.Request.URL)

		mu.Lock()
		attempt := retries[key]
		retries[key]++
		mu.Unlock()

		if attempt < e.config.MaxRetries && ctx.Err() == nil {
			// linear backoff: 1x, 2x, ...
			time.Sleep(time.Duration(attempt+1) * e.config.Backoff)
			if r.Request.Retry() == nil {
				return
			}
		}

		mu.Lock()
		if lastErr == nil {
			lastErr = fmt.Errorf("colly error: %w (status: %d)", err, r.StatusCode)
		}
		mu.Unlock()
	})

	visitErr := collector.Visit(startURL)

	mu.Lock()
	defer mu.Unlock()

	if pages == 0 {
		if lastErr != nil {
			return nil, 0, lastErr
		}
		if visitErr != nil {
			return nil, 0, fmt.Errorf("visit list url: %w", visitErr)
		}
	}
	if !anyTable {
		return nil, pages, ErrNoTable
	}
	return records, pages, nil
}

// pageKey ignores fragments so "#top" links do not count as new pages
func pageKey(u *url.URL) string {
	c := *u
	c.Fragment = ""
	return c.String()
}
