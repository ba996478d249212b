// Package kafka implements an eventstream publisher backed by Apache Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/eventstream"
)

// DefaultTopic is the topic mind events are published to.
const DefaultTopic = "psyche-events"

// Publisher writes mind events to a Kafka topic, keyed by event type so
// consumers reading a single partition see turns in order.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of broker addresses.
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic if empty.
	Topic string
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}

	logger.Info("kafka eventstream publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topic),
	)

	return &Publisher{writer: writer, logger: logger}, nil
}

var _ eventstream.Publisher = (*Publisher)(nil)

// PublishTurn writes a turn event.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	return p.publish(ctx, eventstream.EventTypeTurnCompleted, event.EventID, event)
}

// PublishDream writes a dream event.
func (p *Publisher) PublishDream(ctx context.Context, event *eventstream.DreamIntegratedEvent) error {
	if event == nil {
		return eventstream.ErrNilDreamEvent
	}
	return p.publish(ctx, eventstream.EventTypeDreamIntegrated, event.EventID, event)
}

func (p *Publisher) publish(ctx context.Context, eventType, eventID string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", eventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(eventType),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", eventType, err)
	}

	p.logger.Debug("published event",
		zap.String("event_type", eventType),
		zap.String("event_id", eventID),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
