// Package events publishes review lifecycle events so that downstream
// consumers (notifications, the product sync job, audit) learn about
// submissions and decisions.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listing-review/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Type names a review event
type Type string

const (
	TypeReviewSubmitted Type = "review.submitted"
	TypeReviewDecided   Type = "review.decided"
)

// ReviewEvent is the payload written for every lifecycle change
type ReviewEvent struct {
	Type       Type                `json:"type"`
	ReviewID   string              `json:"reviewId"`
	ProductID  string              `json:"productId"`
	PersonID   string              `json:"personId"`
	Status     domain.ReviewStatus `json:"status"`
	ActorID    string              `json:"actorId"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// NewReviewEvent builds the event for review as changed by actorID
func NewReviewEvent(t Type, review *domain.Review, actorID string, at time.Time) ReviewEvent {
	return ReviewEvent{
		Type:       t,
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		PersonID:   review.PersonID,
		Status:     review.Status,
		ActorID:    actorID,
		OccurredAt: at,
	}
}

// Publisher emits review events
type Publisher interface {
	Publish(ctx context.Context, event ReviewEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by review id, so all
// events of one review stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish writes one event
func (p *KafkaPublisher) Publish(ctx context.Context, event ReviewEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode review event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ReviewID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish review event: %w", err)
	}

	p.logger.Debug("Review event published",
		zap.String("type", string(event.Type)),
		zap.String("review_id", event.ReviewID),
	)
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events. Used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event ReviewEvent) error {
	p.logger.Info("Review event",
		zap.String("type", string(event.Type)),
		zap.String("review_id", event.ReviewID),
		zap.String("product_id", event.ProductID),
		zap.String("status", string(event.Status)),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// New picks the Kafka publisher when brokers are set, the log publisher otherwise
func New(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(brokers, topic, logger)
}
