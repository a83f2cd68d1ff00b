package queue

import (
	"context"
	"fmt"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// pushChunk caps the number of values sent in a single LPUSH
const pushChunk = 500

// Publisher appends notices to the tail the consumer reads last.
// LPUSH here and RPOP in Consumer keep the list FIFO.
type Publisher struct {
	client    *redis.Client
	queueName string
}

func NewPublisher(client *redis.Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{client: client, queueName: queueName}
}

// PublishBatch enqueues notices in order. A multi-value LPUSH inserts
// left to right, so the first notice is still the first popped.
func (p *Publisher) PublishBatch(ctx context.Context, notices []domain.NormalizedNotice) error {
	for start := 0; start < len(notices); start += pushChunk {
		end := min(start+pushChunk, len(notices))

		values := make([]any, 0, end-start)
		for i := start; i < end; i++ {
			data, err := encode(&notices[i])
			if err != nil {
				return err
			}
			values = append(values, data)
		}

		if err := p.client.LPush(ctx, p.queueName, values...).Err(); err != nil {
			return fmt.Errorf("lpush %d notices: %w", len(values), err)
		}
	}
	return nil
}
