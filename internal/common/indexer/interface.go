package indexer

import (
	"context"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

// Indexer defines the interface for notice sinks. Implementations upsert by
// notice id, so re-running a batch is safe.
type Indexer interface {
	// BulkIndex indexes multiple notices at once
	BulkIndex(ctx context.Context, notices []*domain.NormalizedNotice) error
}

// BatchWriter is a sink that needs run metadata, such as the static export
type BatchWriter interface {
	WriteBatch(ctx context.Context, batch *domain.Batch) error
}

// Pointers adapts a value slice for BulkIndex
func Pointers(notices []domain.NormalizedNotice) []*domain.NormalizedNotice {
	out := make([]*domain.NormalizedNotice, len(notices))
	for i := range notices {
		out[i] = &notices[i]
	}
	return out
}
