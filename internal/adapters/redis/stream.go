package redisad

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"propmatch/internal/adapters/observability"
	"propmatch/internal/domain"
)

const DefaultStream = "propmatch:notifications"

// StreamNotifier appends notifications to a Redis stream for the delivery
// service to consume.
type StreamNotifier struct {
	c      *redis.Client
	stream string
	maxLen int64
}

func NewStreamNotifier(c *redis.Client, stream string) *StreamNotifier {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamNotifier{c: c, stream: stream, maxLen: 100_000}
}

func (s *StreamNotifier) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	err = s.c.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Values: map[string]any{
			"user_id": n.UserID,
			"type":    n.Type,
			"title":   n.Title,
			"message": n.Message,
			"payload": string(payload),
		},
	}).Err()
	observability.ObserveNotification("redis", err)
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
