// Package publisher forwards recorded order events to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

const (
	DefaultTopic     = "storefront.order-events"
	defaultBatchSize = 100
)

// MessageWriter is the part of *kafka.Writer the poller uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OutboxPoller struct {
	events    repository.OrderEventRepository
	writer    MessageWriter
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewKafkaWriter builds the writer for the configured brokers and topic
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(events repository.OrderEventRepository, writer MessageWriter, interval time.Duration, logger *zap.Logger) *OutboxPoller {
	return &OutboxPoller{
		events:    events,
		writer:    writer,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger,
	}
}

// Run publishes pending events every interval until ctx is cancelled
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.PublishPending(ctx); err != nil {
				p.logger.Error("Failed to fetch unpublished events", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// PublishPending writes one batch of unpublished events and marks each one
// published after its write succeeds. Events that fail stay pending for the
// next tick.
func (p *OutboxPoller) PublishPending(ctx context.Context) (int, error) {
	events, err := p.events.ListUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		msg, err := toMessage(event)
		if err != nil {
			p.logger.Error("Failed to encode event", zap.String("event_id", event.ID.String()), zap.Error(err))
			continue
		}

		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Warn("Failed to publish event",
				zap.String("event_id", event.ID.String()),
				zap.String("order_id", event.OrderID.String()),
				zap.Error(err),
			)
			continue
		}

		if err := p.events.MarkPublished(ctx, event.ID); err != nil {
			p.logger.Error("Failed to mark event as published",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
			continue
		}
		published++
	}

	if published > 0 {
		p.logger.Debug("Published order events", zap.Int("count", published))
	}
	return published, nil
}

type eventPayload struct {
	ID        string                 `json:"id"`
	OrderID   string                 `json:"orderId"`
	EventType string                 `json:"eventType"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
}

// toMessage keys by order id so one order's events stay ordered on a partition
func toMessage(event *domain.OrderEvent) (kafka.Message, error) {
	value, err := json.Marshal(eventPayload{
		ID:        event.ID.String(),
		OrderID:   event.OrderID.String(),
		EventType: event.EventType,
		Data:      event.EventData,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}, nil
}
