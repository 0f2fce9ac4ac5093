// Package outbound delivers post-commit signals: per-account notifications and
// process-wide broadcasts. Delivery is best effort.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/SscSPs/collectibles_market/internal/platform/config"
	"github.com/SscSPs/collectibles_market/pkg/database"
	"github.com/redis/go-redis/v9"
)

// Hub owns the signal sinks and their connections. It is built once at startup
// and closed on shutdown.
type Hub struct {
	Notifier    external.Notifier
	Broadcaster external.Broadcaster
	// Redis is shared with the stats cache when a Redis URL is configured.
	Redis   *redis.Client
	closers []io.Closer
}

// NewHub wires the sinks selected by cfg. Missing credentials fall back to log sinks.
func NewHub(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Hub, error) {
	hub := &Hub{
		Notifier:    NewLogNotifier(logger),
		Broadcaster: NewLogBroadcaster(logger),
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		hub.Redis = client
		hub.closers = append(hub.closers, client)
	}

	if cfg.TelegramBotToken != "" {
		notifier, err := NewTelegramNotifier(cfg.TelegramBotToken)
		if err != nil {
			_ = hub.Close()
			return nil, err
		}
		hub.Notifier = notifier
	}

	switch cfg.BroadcastDriver {
	case config.BroadcastRedis:
		if hub.Redis == nil {
			_ = hub.Close()
			return nil, fmt.Errorf("redis broadcaster requires REDIS_URL")
		}
		hub.Broadcaster = NewRedisBroadcaster(hub.Redis, "")
	case config.BroadcastKafka:
		broadcaster, err := NewKafkaBroadcaster(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			_ = hub.Close()
			return nil, err
		}
		hub.Broadcaster = broadcaster
		hub.closers = append(hub.closers, broadcaster)
	}

	logger.Info("Outbound hub ready",
		slog.String("notifier", fmt.Sprintf("%T", hub.Notifier)),
		slog.String("broadcaster", fmt.Sprintf("%T", hub.Broadcaster)))
	return hub, nil
}

// Close releases every connection the hub opened.
func (h *Hub) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}
