// Package events publishes roster change notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"example.com/extracurricular/internal/domain"
	"example.com/extracurricular/internal/observability"
)

// EventTypeRosterChanged is sent in the event_type header of every message.
const EventTypeRosterChanged = "activity.roster_changed"

// RosterChanged is the JSON payload written for each committed roster change.
type RosterChanged struct {
	EventID    string    `json:"event_id"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes RosterChanged events keyed by activity name, so every
// change to one roster lands on the same partition in order.
type KafkaPublisher struct {
	writer MessageWriter
	newID  func() string
}

var _ domain.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
		Async:        false,
	})
}

// NewPublisher wraps an existing writer.
func NewPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, newID: uuid.NewString}
}

// PublishRosterChange implements domain.EventPublisher.
func (p *KafkaPublisher) PublishRosterChange(ctx context.Context, change domain.RosterChange) error {
	body, err := json.Marshal(RosterChanged{
		EventID:    p.newID(),
		Activity:   change.Activity,
		Email:      change.Email,
		Action:     string(change.Action),
		OccurredAt: change.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal roster event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(change.Activity),
		Value: body,
		Time:  change.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeRosterChanged)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		observability.RecordPublishFailure()
		return fmt.Errorf("write roster event: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
