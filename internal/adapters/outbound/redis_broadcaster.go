package outbound

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel realtime gateways subscribe to.
const DefaultRedisChannel = "market:events"

// RedisBroadcaster publishes events on a Redis pub/sub channel.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
}

func NewRedisBroadcaster(client *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBroadcaster{client: client, channel: channel}
}

var _ external.Broadcaster = (*RedisBroadcaster)(nil)

func (b *RedisBroadcaster) Emit(ctx context.Context, event string, payload map[string]any) error {
	data, err := encodeEnvelope(event, payload, time.Now())
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event, err)
	}
	return nil
}
