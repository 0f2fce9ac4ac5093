package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/google/uuid"
)

const (
	// DefaultBidExpiryHours applies when a bid is placed without an expiry.
	DefaultBidExpiryHours = 24
	// MaxBidExpiryHours caps how long a bid may stand.
	MaxBidExpiryHours = 720
)

// bidService implements the bid lifecycle. Bids do not escrow funds: the
// bidder's balance is checked at placement and again at acceptance.
type bidService struct {
	BaseService
	executor *Executor
}

// NewBidService creates a bid service running its operations through executor.
func NewBidService(executor *Executor, opts ...Option) portssvc.BidSvcFacade {
	return &bidService{
		BaseService: newBaseService(opts),
		executor:    executor,
	}
}

var _ portssvc.BidSvcFacade = (*bidService)(nil)

func (s *bidService) PlaceBid(ctx context.Context, itemID, bidderID string, amount int64, expiryHours int) (*domain.Bid, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", apperrors.ErrValidation)
	}
	if expiryHours == 0 {
		expiryHours = DefaultBidExpiryHours
	}
	if expiryHours < 1 || expiryHours > MaxBidExpiryHours {
		return nil, fmt.Errorf("%w: expiry must be within [1, %d] hours", apperrors.ErrValidation, MaxBidExpiryHours)
	}

	type placeOutcome struct {
		bid             domain.Bid
		ownerExternalID string
	}
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (placeOutcome, error) {
		now := s.Now()
		item, err := tx.FindItemForUpdate(ctx, itemID)
		if err != nil {
			return placeOutcome{}, err
		}
		if item.OwnerID == nil {
			return placeOutcome{}, fmt.Errorf("%w: item %s has no owner", apperrors.ErrInvalidState, itemID)
		}
		if item.IsOwnedBy(bidderID) {
			return placeOutcome{}, fmt.Errorf("%w: owners cannot bid on their own item", apperrors.ErrInvalidState)
		}
		bidder, err := tx.FindAccountForUpdate(ctx, bidderID)
		if err != nil {
			return placeOutcome{}, err
		}
		if !bidder.CanAfford(amount) {
			return placeOutcome{}, fmt.Errorf("%w: bid %d, balance %d", apperrors.ErrInsufficientFunds, amount, bidder.Balance)
		}
		owner, err := tx.FindAccount(ctx, *item.OwnerID)
		if err != nil {
			return placeOutcome{}, err
		}

		bid := domain.Bid{
			BidID:       uuid.NewString(),
			ItemID:      itemID,
			BidderID:    bidderID,
			Amount:      amount,
			Status:      domain.BidActive,
			ExpiresAt:   now.Add(time.Duration(expiryHours) * time.Hour),
			AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := tx.SaveBid(ctx, bid); err != nil {
			return placeOutcome{}, err
		}
		return placeOutcome{bid: bid, ownerExternalID: owner.ExternalID}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Place bid failed", slog.String("item_id", itemID))
		return nil, err
	}

	s.notify(ctx, out.ownerExternalID, external.KindBidReceived, map[string]any{"itemID": itemID, "bidID": out.bid.BidID, "amount": amount})
	return &out.bid, nil
}

// acceptOutcome separates committed rejections (expired bid, broke bidder) from
// failures that must roll back.
type acceptOutcome struct {
	purchase *domain.Purchase
	signals  saleSignals
	bidder   string
	refusal  error
}

// lockBid locks the item bidID targets and then the bid itself, the order every
// item-scoped unit of work uses. authorize runs once the item is held, before the
// bid's status is revealed.
func lockBid(ctx context.Context, tx portsrepo.Tx, bidID string, authorize func(ctx context.Context, tx portsrepo.Tx, bid *domain.Bid) error) (*domain.Bid, error) {
	peek, err := tx.FindBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tx, peek); err != nil {
		return nil, err
	}
	bid, err := tx.FindBidForUpdate(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status != domain.BidActive {
		return nil, fmt.Errorf("%w: bid %s is already %s", apperrors.ErrConflict, bidID, bid.Status)
	}
	return bid, nil
}

// AcceptBid sells the item to the bidder at the bid amount. An expired bid is
// committed as expired and an unaffordable one as cancelled before the error returns.
func (s *bidService) AcceptBid(ctx context.Context, bidID, ownerID string) (*domain.Purchase, error) {
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (acceptOutcome, error) {
		now := s.Now()
		var item *domain.Item
		bid, err := lockBid(ctx, tx, bidID, func(ctx context.Context, tx portsrepo.Tx, bid *domain.Bid) error {
			owned, err := ownedItem(ctx, tx, bid.ItemID, ownerID)
			item = owned
			return err
		})
		if err != nil {
			return acceptOutcome{}, err
		}
		if bid.IsExpired(now) {
			if err := tx.UpdateBidStatus(ctx, bidID, domain.BidExpired, now); err != nil {
				return acceptOutcome{}, err
			}
			return acceptOutcome{refusal: fmt.Errorf("%w: bid %s expired at %s", apperrors.ErrInvalidState, bidID, bid.ExpiresAt.Format(time.RFC3339))}, nil
		}
		if err := checkResale(item, bid.BidderID); err != nil {
			return acceptOutcome{}, err
		}
		parties, err := lockParties(ctx, tx, bid.BidderID, *item.OwnerID)
		if err != nil {
			return acceptOutcome{}, err
		}
		bidder := parties.buyer
		if !bidder.CanAfford(bid.Amount) {
			if err := tx.UpdateBidStatus(ctx, bidID, domain.BidCancelled, now); err != nil {
				return acceptOutcome{}, err
			}
			return acceptOutcome{
				bidder:  bidder.ExternalID,
				refusal: fmt.Errorf("%w: bidder can no longer cover %d", apperrors.ErrInsufficientFunds, bid.Amount),
			}, nil
		}

		// Mark the winner first so the sale's sibling sweep leaves it alone.
		if err := tx.UpdateBidStatus(ctx, bidID, domain.BidAccepted, now); err != nil {
			return acceptOutcome{}, err
		}
		purchase, sig, err := s.secondarySale(ctx, tx, item, parties, bid.Amount, now)
		if err != nil {
			return acceptOutcome{}, err
		}
		return acceptOutcome{purchase: purchase, signals: sig, bidder: bidder.ExternalID}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Accept bid failed", slog.String("bid_id", bidID))
		return nil, err
	}
	if out.refusal != nil {
		s.LogInfo(ctx, "Bid refused at acceptance", slog.String("bid_id", bidID), slog.String("reason", out.refusal.Error()))
		return nil, out.refusal
	}

	s.LogInfo(ctx, "Bid accepted", slog.String("bid_id", bidID), slog.String("item_id", out.purchase.Item.ItemID))
	s.notify(ctx, out.bidder, external.KindBidAccepted, map[string]any{"bidID": bidID, "itemID": out.purchase.Item.ItemID})
	s.announceSale(ctx, out.purchase, out.signals)
	return out.purchase, nil
}

// resolve moves an active bid to status after authorize accepts the caller.
func (s *bidService) resolve(ctx context.Context, bidID string, status domain.BidStatus, authorize func(ctx context.Context, tx portsrepo.Tx, bid *domain.Bid) error) (*domain.Bid, error) {
	return RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.Bid, error) {
		bid, err := lockBid(ctx, tx, bidID, authorize)
		if err != nil {
			return nil, err
		}
		now := s.Now()
		if err := tx.UpdateBidStatus(ctx, bidID, status, now); err != nil {
			return nil, err
		}
		bid.Status = status
		bid.LastUpdatedAt = now
		return bid, nil
	})
}

func (s *bidService) RejectBid(ctx context.Context, bidID, ownerID string) (*domain.Bid, error) {
	bid, err := s.resolve(ctx, bidID, domain.BidRejected, func(ctx context.Context, tx portsrepo.Tx, bid *domain.Bid) error {
		_, err := ownedItem(ctx, tx, bid.ItemID, ownerID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Reject bid failed", slog.String("bid_id", bidID))
		return nil, err
	}
	return bid, nil
}

func (s *bidService) CancelBid(ctx context.Context, bidID, bidderID string) (*domain.Bid, error) {
	bid, err := s.resolve(ctx, bidID, domain.BidCancelled, func(_ context.Context, _ portsrepo.Tx, bid *domain.Bid) error {
		if bid.BidderID != bidderID {
			return fmt.Errorf("%w: only the bidder can cancel bid %s", apperrors.ErrForbidden, bidID)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Cancel bid failed", slog.String("bid_id", bidID))
		return nil, err
	}
	return bid, nil
}

func (s *bidService) ExpireBids(ctx context.Context) (int, error) {
	expired, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (int, error) {
		return tx.ExpireBids(ctx, s.Now())
	})
	if err != nil {
		s.LogError(ctx, err, "Bid expiry sweep failed")
		return 0, err
	}
	if expired > 0 {
		s.LogInfo(ctx, "Expired stale bids", slog.Int("count", expired))
	}
	return expired, nil
}
