package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTracker_Integration requires a running Redis.
// We skip if connection fails.
func TestTracker_Integration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	tracker := NewTracker(client, "test:"+uuid.NewString(), time.Minute)

	a := domain.NormalizedNotice{Jurisdiction: domain.StateWA, EmployerName: "Harbor Medical Center"}
	a.ID = ComputeID(&a)
	b := domain.NormalizedNotice{Jurisdiction: domain.StateWA, EmployerName: "Puget Home Care"}
	b.ID = ComputeID(&b)

	changed, counts, err := tracker.FilterChanged(ctx, []domain.NormalizedNotice{a, b})
	require.NoError(t, err)
	assert.Len(t, changed, 2)
	assert.Equal(t, 2, counts[ResultNew])

	require.NoError(t, tracker.MarkAllSeen(ctx, []domain.NormalizedNotice{a, b}))

	b.Reason = "closure of home health division"
	changed, counts, err = tracker.FilterChanged(ctx, []domain.NormalizedNotice{a, b})
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "Puget Home Care", changed[0].EmployerName)
	assert.Equal(t, 1, counts[ResultUnchanged])
	assert.Equal(t, 1, counts[ResultUpdated])
}

func TestClassify(t *testing.T) {
	n := &domain.NormalizedNotice{Jurisdiction: domain.StateWA, EmployerName: "Harbor Medical Center"}

	assert.Equal(t, ResultNew, classify(nil, n))
	assert.Equal(t, ResultUnchanged, classify(Fingerprint(n), n))
	assert.Equal(t, ResultUpdated, classify("stale", n))
	assert.Equal(t, "updated", ResultUpdated.String())
}
