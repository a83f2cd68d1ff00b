package indexer

import (
	"context"
	"fmt"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Fanout sends every batch to several indexers concurrently
type Fanout struct {
	indexers []Indexer
	names    []string
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers an indexer under a name used in error messages
func (f *Fanout) Add(name string, idx Indexer) *Fanout {
	f.indexers = append(f.indexers, idx)
	f.names = append(f.names, name)
	return f
}

func (f *Fanout) Len() int {
	return len(f.indexers)
}

// BulkIndex runs every indexer and returns the first error. Other indexers
// still finish their writes.
func (f *Fanout) BulkIndex(ctx context.Context, notices []*domain.NormalizedNotice) error {
	if len(notices) == 0 || len(f.indexers) == 0 {
		return nil
	}

	var g errgroup.Group
	for i, idx := range f.indexers {
		name := f.names[i]
		g.Go(func() error {
			if err := idx.BulkIndex(ctx, notices); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
