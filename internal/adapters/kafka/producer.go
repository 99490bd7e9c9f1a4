package kafkaad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"propmatch/internal/adapters/observability"
	"propmatch/internal/domain"
)

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes match notifications as JSON events keyed by user id,
// so one owner's events stay ordered on a partition.
type Producer struct {
	w     messageWriter
	topic string
}

func NewProducer(cfg ProducerConfig) *Producer {
	bt := cfg.BatchTimeout
	if bt <= 0 {
		bt = 50 * time.Millisecond
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           bt,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		topic: cfg.Topic,
	}
}

func (p *Producer) Close() error { return p.w.Close() }

// MatchEvent is the wire form of a notification.
type MatchEvent struct {
	EventType string         `json:"event_type"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (p *Producer) Notify(ctx context.Context, n domain.Notification) error {
	msg, err := buildMessage(n, time.Now().UTC())
	if err != nil {
		return err
	}
	err = p.w.WriteMessages(ctx, msg)
	observability.ObserveNotification("kafka", err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

func buildMessage(n domain.Notification, now time.Time) (kafka.Message, error) {
	data, err := json.Marshal(MatchEvent{
		EventType: n.Type,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Payload:   n.Payload,
		Timestamp: now,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(n.UserID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.Type)},
		},
	}, nil
}
