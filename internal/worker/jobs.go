package worker

import (
	"context"
	"time"

	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
)

// DepositJob polls the external ledger for inbound payments.
func DepositJob(poller portssvc.DepositPollerSvc, interval time.Duration) Job {
	return Job{
		Name:     "deposit_poller",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := poller.PollOnce(ctx)
			return err
		},
	}
}

// BidExpiryJob marks stale active bids as expired.
func BidExpiryJob(bids portssvc.BidSvcFacade, interval time.Duration) Job {
	return Job{
		Name:     "bid_expiry",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := bids.ExpireBids(ctx)
			return err
		},
	}
}
