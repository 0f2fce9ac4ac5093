package outbound

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the broadcaster uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroadcaster writes events to a single topic keyed by event name.
type KafkaBroadcaster struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaBroadcaster(brokers []string, topic string) (*KafkaBroadcaster, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka broadcaster requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka broadcaster requires a topic")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		RequiredAcks: kafka.RequireOne,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaBroadcaster(writer, topic), nil
}

func newKafkaBroadcaster(writer messageWriter, topic string) *KafkaBroadcaster {
	return &KafkaBroadcaster{writer: writer, topic: topic, now: time.Now}
}

var _ external.Broadcaster = (*KafkaBroadcaster)(nil)

func (b *KafkaBroadcaster) Emit(ctx context.Context, event string, payload map[string]any) error {
	now := b.now().UTC()
	data, err := encodeEnvelope(event, payload, now)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: b.topic,
		Key:   []byte(event),
		Value: data,
		Time:  now,
	})
}

func (b *KafkaBroadcaster) Close() error {
	return b.writer.Close()
}
