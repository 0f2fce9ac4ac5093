package external

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// Notification kinds sent to a single account.
const (
	KindDeposit         = "deposit"
	KindItemSold        = "item_sold"
	KindBidReceived     = "bid_received"
	KindBidAccepted     = "bid_accepted"
	KindItemReceived    = "item_received"
	KindPresaleResult   = "presale_result"
	KindWithdrawalState = "withdrawal_state"
)

// Broadcast event names fanned out process-wide.
const (
	EventActivityNew    = "activity:new"
	EventItemSold       = "nft:sold"
	EventBalanceDeposit = "balance:deposit"
	EventPresaleDrawn   = "presale:drawn"
)

// Notifier delivers a message to one account. Failures are logged by callers, never propagated.
type Notifier interface {
	Notify(ctx context.Context, accountExternalID string, kind string, payload map[string]any) error
}

// Broadcaster fans an event out to every realtime subscriber.
type Broadcaster interface {
	Emit(ctx context.Context, event string, payload map[string]any) error
}

// ExternalLedger lists inbound payments on a wallet address. Results are untrusted and unordered.
type ExternalLedger interface {
	ListRecentInbound(ctx context.Context, address string, count int) ([]domain.InboundTransfer, error)
}

// PaymentDispatcher executes an outbound payment and returns its dispatch reference.
type PaymentDispatcher interface {
	Dispatch(ctx context.Context, destination string, amount int64) (string, error)
}
