package provider

import (
	"context"
	"errors"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/dedup"
	"github.com/project-tktt/warn-crawler/internal/common/normalizer"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// Provider is a single data source an adapter may query: an official state
// listing, a cross-state aggregator, or the news feed
type Provider interface {
	// Name identifies the provider in provenance, logs and the manifest
	Name() string

	// Fetch returns finalized notices (id and impact set). An error means the
	// source was unreachable or unparsable; the adapter treats it as zero results.
	Fetch(ctx context.Context) ([]domain.NormalizedNotice, error)
}

// base carries what every provider needs to turn raw records into notices
type base struct {
	name         string
	url          string
	jurisdiction domain.StateCode
	normalizer   *normalizer.Normalizer
	log          *logger.Logger
}

func newBase(name, url string, jurisdiction domain.StateCode, log *logger.Logger) base {
	if log == nil {
		log = logger.NewNop()
	}
	return base{
		name:         name,
		url:          url,
		jurisdiction: jurisdiction,
		normalizer:   normalizer.NewNormalizer(),
		log:          log.With("provider", name, "jurisdiction", jurisdiction),
	}
}

func (b *base) Name() string {
	return b.name
}

// finalize normalizes raw records, drops malformed rows and stamps identity
// and impact. Rows for another jurisdiction are dropped when the record
// carries a state column.
func (b *base) finalize(records []domain.RawRecord, retrievedAt time.Time) []domain.NormalizedNotice {
	src := normalizer.Source{
		Jurisdiction: b.jurisdiction,
		ProviderName: b.name,
		ProviderURL:  b.url,
		RetrievedAt:  retrievedAt,
	}

	notices := make([]domain.NormalizedNotice, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if st := rec.Get(domain.FieldState); st != "" && b.jurisdiction != "" {
			if code, ok := domain.ParseStateCode(st); ok && code != b.jurisdiction {
				continue
			}
		}

		n, err := b.normalizer.Normalize(rec, src)
		if errors.Is(err, normalizer.ErrMissingEmployer) {
			dropped++
			continue
		}
		if err != nil {
			b.log.Debug("normalize record", "error", err)
			dropped++
			continue
		}
		dedup.Finalize(n)
		notices = append(notices, *n)
	}

	if dropped > 0 {
		b.log.Debug("dropped malformed records", "count", dropped)
	}
	return notices
}
