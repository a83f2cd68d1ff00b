package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// Targets selects the stores Open connects to; empty fields are skipped
type Targets struct {
	PostgresURL   string
	PostgresTable string
	ESAddresses   []string
	ESIndex       string
}

// Open connects every configured store and returns them behind one fan-out.
// A store that cannot be reached is logged and left out; Open fails only
// when none is available. close releases the PostgreSQL handle.
func Open(ctx context.Context, t Targets, log *logger.Logger) (*Fanout, func(), error) {
	if log == nil {
		log = logger.NewNop()
	}
	fan := NewFanout()
	closers := []func(){}
	var errs []error

	if t.PostgresURL != "" {
		pg, err := NewPostgresIndexer(ctx, t.PostgresURL, t.PostgresTable, log.With("sink", "postgres"))
		if err != nil {
			log.Warn("postgres unavailable", "error", err)
			errs = append(errs, err)
		} else {
			fan.Add("postgres", pg)
			closers = append(closers, func() { _ = pg.Close() })
			log.Info("postgres connected", "table", pg.tableName)
		}
	}

	if len(t.ESAddresses) > 0 {
		es, err := NewElasticsearchIndexer(t.ESAddresses, t.ESIndex, log.With("sink", "elasticsearch"))
		if err != nil {
			log.Warn("elasticsearch unavailable", "error", err)
			errs = append(errs, err)
		} else {
			if err := es.EnsureIndex(ctx); err != nil {
				log.Warn("ensure index failed", "error", err)
			}
			fan.Add("elasticsearch", es)
			log.Info("elasticsearch connected", "index", es.indexName)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if fan.Len() == 0 {
		if len(errs) == 0 {
			return nil, closeAll, fmt.Errorf("open indexers: no store configured")
		}
		return nil, closeAll, fmt.Errorf("open indexers: %w", errors.Join(errs...))
	}
	return fan, closeAll, nil
}
