package queue

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

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skip("Skipping Redis integration test: redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublishConsume_RoundTrip(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	name := "test:queue:" + uuid.NewString()
	defer client.Del(ctx, name)

	pub := NewPublisher(client, name)
	con := NewConsumer(client, name, time.Second)

	count := 120
	notices := []domain.NormalizedNotice{
		{ID: "a", Jurisdiction: domain.StateCA, EmployerName: "Mercy Hospital", EmployeesAffected: &count, NoticeDate: domain.DatePtr(2025, time.March, 4)},
		{ID: "b", Jurisdiction: domain.StateCA, EmployerName: "Bay Clinic"},
		{ID: "c", Jurisdiction: domain.StateNY, EmployerName: "Bronx Care"},
	}
	require.NoError(t, pub.PublishBatch(ctx, notices))
	require.NoError(t, client.LPush(ctx, name, "{not json").Err())

	length, err := con.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), length)

	// FIFO: LPUSH on publish, RPOP on consume
	got, err := con.ConsumeBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 120, *got[0].EmployeesAffected)
	assert.Equal(t, "2025-03-04", got[0].NoticeDate.String())
	assert.Equal(t, "c", got[2].ID)

	got, err = con.ConsumeBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConsumeBatch_SingleAndTimeout(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	name := "test:queue:" + uuid.NewString()
	defer client.Del(ctx, name)

	pub := NewPublisher(client, name)
	con := NewConsumer(client, name, time.Second)

	require.NoError(t, pub.PublishBatch(ctx, []domain.NormalizedNotice{
		{ID: "x", Jurisdiction: domain.StateTX, EmployerName: "Gulf Hospice"},
		{ID: "y", Jurisdiction: domain.StateTX, EmployerName: "Bayou Rehab"},
	}))

	got, err := con.ConsumeBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gulf Hospice", got[0].EmployerName)

	length, err := con.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	got, err = con.ConsumeBatch(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = con.ConsumeBatch(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPublishBatch_Empty(t *testing.T) {
	// no client call for an empty batch
	pub := NewPublisher(nil, "")
	assert.NoError(t, pub.PublishBatch(context.Background(), nil))
	assert.Equal(t, DefaultQueue, pub.queueName)
}

func TestDecodeAll_DropsMalformed(t *testing.T) {
	good, err := encode(&domain.NormalizedNotice{ID: "a", Jurisdiction: domain.StateFL, EmployerName: "Tampa Rehab"})
	require.NoError(t, err)

	got := decodeAll(nil, []string{string(good), "{oops", ""})
	require.Len(t, got, 1)
	assert.Equal(t, domain.StateFL, got[0].Jurisdiction)

	_, err = decode("[]")
	assert.ErrorContains(t, err, "unmarshal notice")
}
