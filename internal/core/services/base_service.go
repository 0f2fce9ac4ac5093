package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/SscSPs/collectibles_market/internal/platform/random"
)

// DefaultReferralPercent is the share of a purchase credited to the buyer's referrer.
const DefaultReferralPercent = 2

// BaseService provides common functionality for all services
type BaseService struct {
	clock           func() time.Time
	rng             random.Source
	referralPercent int
	adminIDs        map[string]struct{}
	notifier        external.Notifier
	broadcaster     external.Broadcaster
}

// Option is a functional option shared by every service constructor.
type Option func(*BaseService)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithRandom injects the randomness used for mint numbers and raffle draws.
func WithRandom(src random.Source) Option {
	return func(s *BaseService) {
		s.rng = src
	}
}

// WithReferralPercent sets the referral commission rate.
func WithReferralPercent(percent int) Option {
	return func(s *BaseService) {
		s.referralPercent = percent
	}
}

// WithAdminExternalIDs grants admin rights to the listed identities on top of the account flag.
func WithAdminExternalIDs(ids []string) Option {
	return func(s *BaseService) {
		for _, id := range ids {
			s.adminIDs[id] = struct{}{}
		}
	}
}

// WithNotifier sets the per-account notification sink.
func WithNotifier(n external.Notifier) Option {
	return func(s *BaseService) {
		s.notifier = n
	}
}

// WithBroadcaster sets the realtime broadcast sink.
func WithBroadcaster(b external.Broadcaster) Option {
	return func(s *BaseService) {
		s.broadcaster = b
	}
}

func newBaseService(opts []Option) BaseService {
	base := BaseService{
		clock:           time.Now,
		referralPercent: DefaultReferralPercent,
		adminIDs:        map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(&base)
	}
	if base.rng == nil {
		src, err := random.NewCryptoSeeded()
		if err != nil {
			slog.Default().Warn("crypto seed unavailable, falling back to time seed", slog.String("error", err.Error()))
			src = random.NewSeeded(uint64(time.Now().UnixNano()))
		}
		base.rng = src
	}
	return base
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the current time in UTC from the injected clock.
func (s *BaseService) Now() time.Time {
	return s.clock().UTC()
}

// IsAdmin reports whether acc may run admin operations.
func (s *BaseService) IsAdmin(acc *domain.Account) bool {
	if acc == nil {
		return false
	}
	if acc.IsAdmin {
		return true
	}
	_, ok := s.adminIDs[acc.ExternalID]
	return ok
}

// notify sends a best-effort message after commit. Failures are logged only.
func (s *BaseService) notify(ctx context.Context, externalID, kind string, payload map[string]any) {
	if s.notifier == nil || externalID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, externalID, kind, payload); err != nil {
		s.LogError(ctx, err, "Notification failed", slog.String("kind", kind), slog.String("external_id", externalID))
	}
}

// emit broadcasts a best-effort event after commit. Failures are logged only.
func (s *BaseService) emit(ctx context.Context, event string, payload map[string]any) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Emit(ctx, event, payload); err != nil {
		s.LogError(ctx, err, "Broadcast failed", slog.String("event", event))
	}
}
