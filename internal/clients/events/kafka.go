package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
)

// Producer publishes shipment lifecycle events, keyed so that events for the
// same shipment land on the same partition.
type Producer struct {
	log    *logger.Logger
	writer *kafka.Writer
}

func NewProducer(log *logger.Logger, brokerURL, topic string) *Producer {
	return &Producer{
		log: log.With("client", "EventProducer"),
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerURL),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Producer) Publish(ctx context.Context, key string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: raw,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
