package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Consumer pops notices from the head of the queue
type Consumer struct {
	client    *redis.Client
	queueName string
	timeout   time.Duration
}

func NewConsumer(client *redis.Client, queueName string, timeout time.Duration) *Consumer {
	c := &Consumer{client: client, queueName: queueName, timeout: timeout}
	if c.queueName == "" {
		c.queueName = DefaultQueue
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	return c
}

// wait blocks up to the consumer timeout for the next payload.
// ok is false when the timeout passed with nothing queued.
func (c *Consumer) wait(ctx context.Context) (payload string, ok bool, err error) {
	res, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("brpop: %w", err)
	case len(res) < 2:
		return "", false, nil
	}
	return res[1], true, nil
}

// ConsumeBatch waits for the first notice, then takes up to maxBatch-1 more
// without blocking. Payloads that do not decode are dropped.
func (c *Consumer) ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.NormalizedNotice, error) {
	maxBatch = max(maxBatch, 1)
	notices := make([]*domain.NormalizedNotice, 0, maxBatch)

	first, ok, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notices, nil
	}
	payloads := []string{first}

	if maxBatch > 1 {
		rest, err := c.client.RPopCount(ctx, c.queueName, maxBatch-1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return decodeAll(notices, payloads), fmt.Errorf("rpop: %w", err)
		}
		payloads = append(payloads, rest...)
	}

	return decodeAll(notices, payloads), nil
}

func decodeAll(dst []*domain.NormalizedNotice, payloads []string) []*domain.NormalizedNotice {
	for _, p := range payloads {
		if n, err := decode(p); err == nil {
			dst = append(dst, n)
		}
	}
	return dst
}

// QueueLength reports how many notices are still waiting
func (c *Consumer) QueueLength(ctx context.Context) (int64, error) {
	n, err := c.client.LLen(ctx, c.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("llen: %w", err)
	}
	return n, nil
}
