package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Tracker remembers which notices earlier runs already published, using Redis
type Tracker struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewTracker creates a new Redis-based change tracker
func NewTracker(client *redis.Client, prefix string, defaultTTL time.Duration) *Tracker {
	if prefix == "" {
		prefix = "warn:seen"
	}
	if defaultTTL == 0 {
		defaultTTL = 24 * time.Hour * 90 // one WARN notice period plus margin
	}
	return &Tracker{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// CheckResult represents the result of checking a notice
type CheckResult int

const (
	// ResultNew - notice has never been seen
	ResultNew CheckResult = iota
	// ResultUpdated - notice exists but its content changed
	ResultUpdated
	// ResultUnchanged - notice exists and is unchanged
	ResultUnchanged
)

func (r CheckResult) String() string {
	switch r {
	case ResultNew:
		return "new"
	case ResultUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// classify compares a stored fingerprint (nil when absent) with the notice
func classify(stored any, n *domain.NormalizedNotice) CheckResult {
	s, ok := stored.(string)
	switch {
	case !ok:
		return ResultNew
	case s != Fingerprint(n):
		return ResultUpdated
	default:
		return ResultUnchanged
	}
}

// FilterChanged returns the notices that are new or updated since the last
// run, with per-result counts. It reads all keys in one MGET.
func (t *Tracker) FilterChanged(ctx context.Context, notices []domain.NormalizedNotice) ([]domain.NormalizedNotice, map[CheckResult]int, error) {
	counts := make(map[CheckResult]int, 3)
	if len(notices) == 0 {
		return nil, counts, nil
	}

	keys := make([]string, len(notices))
	for i := range notices {
		keys[i] = t.makeKey(&notices[i])
	}
	stored, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, counts, fmt.Errorf("redis mget: %w", err)
	}

	var changed []domain.NormalizedNotice
	for i := range notices {
		result := classify(stored[i], &notices[i])
		counts[result]++
		if result != ResultUnchanged {
			changed = append(changed, notices[i])
		}
	}
	return changed, counts, nil
}

// MarkAllSeen stores fingerprints for a published batch in one pipeline
func (t *Tracker) MarkAllSeen(ctx context.Context, notices []domain.NormalizedNotice) error {
	if len(notices) == 0 {
		return nil
	}
	pipe := t.client.Pipeline()
	for i := range notices {
		pipe.Set(ctx, t.makeKey(&notices[i]), Fingerprint(&notices[i]), t.defaultTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (t *Tracker) makeKey(n *domain.NormalizedNotice) string {
	return fmt.Sprintf("%s:%s:%s", t.prefix, n.Jurisdiction, n.ID)
}
