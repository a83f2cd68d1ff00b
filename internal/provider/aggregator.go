package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/common/fetcher"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// Feed is a cross-state source (CSV export or scraped table) downloaded once
// and shared by every jurisdiction's aggregator provider until it goes stale
type Feed struct {
	name      string
	url       string
	fetcher   *fetcher.Fetcher
	extractor extractor.Extractor
	ttl       time.Duration

	mu        sync.Mutex
	records   []domain.RawRecord
	fetchedAt time.Time
}

// NewFeed creates a shared feed; ttl <= 0 defaults to 15 minutes
func NewFeed(name, url string, f *fetcher.Fetcher, ext extractor.Extractor, ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Feed{name: name, url: url, fetcher: f, extractor: ext, ttl: ttl}
}

// Records returns the cached rows, downloading them when stale. Concurrent
// callers wait for one download instead of issuing their own.
func (f *Feed) Records(ctx context.Context) ([]domain.RawRecord, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// an empty download is cached too; fetchedAt marks that one happened
	if !f.fetchedAt.IsZero() && time.Since(f.fetchedAt) < f.ttl {
		return f.records, f.fetchedAt, nil
	}

	body, err := f.fetcher.Get(ctx, f.url)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("fetch %s: %w", f.name, err)
	}
	records, err := f.extractor.Extract(body, f.url)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("extract %s: %w", f.name, err)
	}

	f.records = records
	f.fetchedAt = time.Now().UTC()
	return f.records, f.fetchedAt, nil
}

// Aggregator selects one jurisdiction's rows from a shared cross-state feed
type Aggregator struct {
	base
	feed *Feed
}

func NewAggregator(feed *Feed, jurisdiction domain.StateCode, log *logger.Logger) *Aggregator {
	return &Aggregator{
		base: newBase(feed.name, feed.url, jurisdiction, log),
		feed: feed,
	}
}

func (a *Aggregator) Fetch(ctx context.Context) ([]domain.NormalizedNotice, error) {
	records, fetchedAt, err := a.feed.Records(ctx)
	if err != nil {
		return nil, err
	}

	// only rows that name this jurisdiction
	var mine []domain.RawRecord
	for _, rec := range records {
		if code, ok := domain.ParseStateCode(rec.Get(domain.FieldState)); ok && code == a.jurisdiction {
			mine = append(mine, rec)
		}
	}
	return a.finalize(mine, fetchedAt), nil
}
