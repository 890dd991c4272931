package events

import (
	"context"
	"log/slog"
)

// LogBus is a Bus that only logs. It stands in for the stream publisher in
// development when no Redis is configured.
type LogBus struct {
	logger *slog.Logger
}

// NewLogBus builds a log-only bus.
func NewLogBus(logger *slog.Logger) *LogBus {
	return &LogBus{logger: logger}
}

// Publish logs the event instead of delivering it.
func (b *LogBus) Publish(ctx context.Context, stream string, payload any) error {
	b.logger.Info("event published", "stream", stream, "payload", payload)
	return nil
}
