package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Handler processes one raw event payload. Returning an error leaves the
// message unacknowledged so the group redelivers it.
type Handler func(ctx context.Context, payload []byte) error

// Subscriber consumes one stream inside a consumer group and dispatches each
// message to a handler. Delivery is at-least-once.
type Subscriber struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	handler       Handler
	logger        *slog.Logger
	batchSize     int64
	blockDuration time.Duration
}

// SubscriberConfig carries the stream binding for one consumer.
type SubscriberConfig struct {
	Stream        string
	Group         string
	Consumer      string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

// NewSubscriber builds a consumer-group subscriber.
func NewSubscriber(client *redis.Client, logger *slog.Logger, cfg SubscriberConfig) *Subscriber {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}

	return &Subscriber{
		client:        client,
		stream:        cfg.Stream,
		group:         cfg.Group,
		consumer:      cfg.Consumer,
		handler:       cfg.Handler,
		logger:        logger,
		batchSize:     cfg.BatchSize,
		blockDuration: cfg.BlockDuration,
	}
}

// Run consumes the stream until the context is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group for %s: %w", s.stream, err)
	}

	s.logger.Info("subscriber started", "stream", s.stream, "group", s.group, "consumer", s.consumer)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopping", "stream", s.stream)
			return ctx.Err()
		default:
			if err := s.readBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("read stream batch", "stream", s.stream, "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) readBatch(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			if err := s.dispatch(ctx, msg); err != nil {
				// Unacknowledged messages are redelivered to the group.
				s.logger.Error("handle event", "stream", s.stream, "message", msg.ID, "error", err)
				continue
			}
			if err := s.client.XAck(ctx, s.stream, s.group, msg.ID).Err(); err != nil {
				s.logger.Error("ack event", "stream", s.stream, "message", msg.ID, "error", err)
			}
		}
	}
	return nil
}

func (s *Subscriber) dispatch(ctx context.Context, msg redis.XMessage) error {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		return fmt.Errorf("message %s has no payload field", msg.ID)
	}
	return s.handler(ctx, []byte(payload))
}
