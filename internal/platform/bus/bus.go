// Package bus provides Kafka producer and consumer plumbing for domain events.
package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher sends serialized domain events to one Kafka topic. Delivery
// is at-least-once; retries are handled by the underlying writer.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the named topic on the given broker.
func NewPublisher(broker, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish sends one event payload to the publisher's topic.
func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	if p == nil || p.writer == nil {
		return errors.New("publisher is not configured")
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("write message to %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// HandlerFunc processes one consumed message.
type HandlerFunc func(topic string, payload []byte)

// Consumer reads events from one or more topics as part of a consumer
// group. Partition ordering and commit handling follow the group
// semantics of the underlying reader.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer subscribes a consumer group to the given topics on the broker.
func NewConsumer(broker, groupID string, topics []string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{broker},
			GroupID:     groupID,
			GroupTopics: topics,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// Run dispatches each consumed message to handle until ctx is
// cancelled. Cancellation is a clean stop, not an error.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	if c == nil || c.reader == nil {
		return errors.New("consumer is not configured")
	}
	if handle == nil {
		return errors.New("handler is required")
	}
	defer c.reader.Close()

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		handle(message.Topic, message.Value)
	}
}
