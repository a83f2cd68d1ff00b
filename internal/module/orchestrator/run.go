package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/project-tktt/warn-crawler/internal/common/dedup"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// RunContext carries the state of one batch run: its id, the adapter
// results gathered so far and the manifest. It is safe for concurrent use.
type RunContext struct {
	BatchID   string
	StartedAt time.Time

	mu       sync.Mutex
	results  []domain.AdapterResult
	manifest []domain.ManifestEntry
}

func NewRunContext() *RunContext {
	return &RunContext{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

func (rc *RunContext) record(entry domain.ManifestEntry, res *domain.AdapterResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.manifest = append(rc.manifest, entry)
	if res != nil {
		rc.results = append(rc.results, *res)
	}
}

// Results returns the completed adapter results ordered by jurisdiction
func (rc *RunContext) Results() []domain.AdapterResult {
	rc.mu.Lock()
	out := make([]domain.AdapterResult, len(rc.results))
	copy(out, rc.results)
	rc.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Jurisdiction < out[j].Jurisdiction })
	return out
}

// Manifest returns one entry per adapter ordered by jurisdiction
func (rc *RunContext) Manifest() []domain.ManifestEntry {
	rc.mu.Lock()
	out := make([]domain.ManifestEntry, len(rc.manifest))
	copy(out, rc.manifest)
	rc.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Jurisdiction < out[j].Jurisdiction })
	return out
}

// Failed lists the adapters that timed out or panicked
func (rc *RunContext) Failed() []domain.ManifestEntry {
	var out []domain.ManifestEntry
	for _, m := range rc.Manifest() {
		if m.Failed() {
			out = append(out, m)
		}
	}
	return out
}

// Notices concatenates every adapter's notices without merging
func (rc *RunContext) Notices() []domain.NormalizedNotice {
	var out []domain.NormalizedNotice
	for _, r := range rc.Results() {
		out = append(out, r.Notices...)
	}
	return out
}

// Batch merges notices sharing an id and packages them for the sinks
func (rc *RunContext) Batch() *domain.Batch {
	return &domain.Batch{
		BatchID:   rc.BatchID,
		FetchedAt: rc.StartedAt,
		Notices:   dedup.MergeAll(rc.Notices()),
		Manifest:  rc.Manifest(),
	}
}
