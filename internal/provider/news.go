package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/common/fetcher"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// News is the last-resort provider: an RSS news search for healthcare
// layoffs in one state. Its records are imprecise and only used when the
// official and aggregator sources come up short.
type News struct {
	base
	fetcher   *fetcher.Fetcher
	extractor *extractor.RSSExtractor
}

// NewNews builds the search URL from feedURL, e.g. https://news.google.com/rss/search
func NewNews(feedURL string, jurisdiction domain.StateCode, f *fetcher.Fetcher, log *logger.Logger) *News {
	return &News{
		base:      newBase("news-search", SearchURL(feedURL, jurisdiction), jurisdiction, log),
		fetcher:   f,
		extractor: extractor.NewRSSExtractor(),
	}
}

// SearchURL composes the news query for a jurisdiction
func SearchURL(feedURL string, jurisdiction domain.StateCode) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf(`"WARN notice" (hospital OR nursing OR health) layoffs "%s" when:60d`, jurisdiction.Name()))
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	return feedURL + "?" + q.Encode()
}

func (n *News) Fetch(ctx context.Context) ([]domain.NormalizedNotice, error) {
	body, err := n.fetcher.Get(ctx, n.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", n.name, err)
	}
	records, err := n.extractor.Extract(body, n.url)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", n.name, err)
	}
	return n.finalize(records, time.Now().UTC()), nil
}
