package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Bus publishes settlement events to a named stream.
type Bus interface {
	Publish(ctx context.Context, stream string, payload any) error
}

// Publisher writes JSON-encoded events to Redis Streams.
type Publisher struct {
	client *redis.Client
}

// NewPublisher builds a stream publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish appends the payload to the stream.
func (p *Publisher) Publish(ctx context.Context, stream string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"payload": body},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", stream, err)
	}
	return nil
}
