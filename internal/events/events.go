package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderStatusEvent is published after every successful order transition.
type OrderStatusEvent struct {
	OrderID      string    `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	Status       string    `json:"status"`
	CustomerID   string    `json:"customerId,omitempty"`
	DriverID     string    `json:"driverId,omitempty"`
	RestaurantID string    `json:"restaurantId"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(context.Context, OrderStatusEvent) error
	Close() error
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		zap.L().Info("kafka brokers are not configured, order events are not published")
		return NopPublisher{}
	}

	return NewKafkaPublisher(newWriter(brokers, topic))
}

// newWriter flushes every message almost immediately and gives up after a few
// attempts, since publishing happens while a request is being served.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		WriteBackoffMax:        100 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
	}
}

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderStatusEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cannot encode order status event: %w", err)
	}

	// Events of one order share a key, and with it a partition.
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("cannot write order status event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderStatusEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
