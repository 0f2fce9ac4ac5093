package outbound

import (
	"context"
	"log/slog"

	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
)

// LogNotifier writes notifications to the log. It backs deployments without a bot token.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, accountExternalID string, kind string, payload map[string]any) error {
	n.logger.InfoContext(ctx, "Notification",
		slog.String("external_id", accountExternalID),
		slog.String("kind", kind),
		slog.Any("payload", payload))
	return nil
}

// LogBroadcaster writes broadcast events to the log at debug level.
type LogBroadcaster struct {
	logger *slog.Logger
}

func NewLogBroadcaster(logger *slog.Logger) *LogBroadcaster {
	return &LogBroadcaster{logger: logger}
}

func (b *LogBroadcaster) Emit(ctx context.Context, event string, payload map[string]any) error {
	b.logger.DebugContext(ctx, "Broadcast", slog.String("event", event), slog.Any("payload", payload))
	return nil
}

var (
	_ external.Notifier    = (*LogNotifier)(nil)
	_ external.Broadcaster = (*LogBroadcaster)(nil)
)
