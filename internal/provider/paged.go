package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// Paged walks a paginated official HTML listing
type Paged struct {
	base
	extractor *extractor.CollyExtractor
}

func NewPaged(name string, jurisdiction domain.StateCode, url string, selectors extractor.Selectors, cfg extractor.ExtractorConfig, log *logger.Logger) *Paged {
	return &Paged{
		base:      newBase(name, url, jurisdiction, log),
		extractor: extractor.NewCollyExtractor(selectors, cfg),
	}
}

func (p *Paged) Fetch(ctx context.Context) ([]domain.NormalizedNotice, error) {
	records, pages, err := p.extractor.ExtractList(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", p.name, err)
	}
	p.log.Debug("listing walked", "pages", pages, "records", len(records))
	return p.finalize(records, time.Now().UTC()), nil
}
