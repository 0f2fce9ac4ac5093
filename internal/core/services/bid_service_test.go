package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BidServiceTestSuite struct {
	storeSuite
	service portssvc.BidSvcFacade
}

func (s *BidServiceTestSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.service = services.NewBidService(s.executor, s.options()...)

	s.seedSeries("series-1", 10, 100, 10)
	s.seedAccount("owner", 0, nil)
	s.seedAccount("alice", 1000, nil)
	s.seedAccount("bob", 1000, nil)
	s.seedItem("item-1", "series-1", 1, "owner", nil)
	s.seedItem("item-2", "series-1", 2, "owner", nil)
}

func TestBidServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BidServiceTestSuite))
}

func (s *BidServiceTestSuite) TestPlaceBid_Validation() {
	_, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 0, 24)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.PlaceBid(s.ctx, "item-1", "alice", 10, services.MaxBidExpiryHours+1)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.PlaceBid(s.ctx, "item-1", "owner", 10, 24)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = s.service.PlaceBid(s.ctx, "item-1", "alice", 1001, 24)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (s *BidServiceTestSuite) TestPlaceBid_DefaultExpiryAndOwnerNotified() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 300, 0)

	s.Require().NoError(err)
	s.Equal(domain.BidActive, bid.Status)
	s.Equal(s.now.Add(services.DefaultBidExpiryHours*time.Hour), bid.ExpiresAt)
	s.EqualValues(1000, s.balance("alice"), "placing a bid moves no funds")
	s.notifier.AssertCalled(s.T(), "Notify", mock.Anything, "ext-owner", external.KindBidReceived, mock.Anything)
}

// Bids are not escrowed: one balance can back several open bids at once.
func (s *BidServiceTestSuite) TestPlaceBid_IsNonBinding() {
	_, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 1000, 24)
	s.Require().NoError(err)
	_, err = s.service.PlaceBid(s.ctx, "item-2", "alice", 1000, 24)
	s.Require().NoError(err)

	s.EqualValues(1000, s.balance("alice"))
}

func (s *BidServiceTestSuite) TestAcceptBid_SellsAndRejectsSiblings() {
	winner, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)
	loser, err := s.service.PlaceBid(s.ctx, "item-1", "bob", 400, 24)
	s.Require().NoError(err)

	purchase, err := s.service.AcceptBid(s.ctx, winner.BidID, "owner")

	s.Require().NoError(err)
	s.Equal("alice", *purchase.Item.OwnerID)
	s.EqualValues(500, purchase.Order.Price)
	s.EqualValues(50, purchase.Order.Royalty)
	s.EqualValues(450, s.balance("owner"))
	s.EqualValues(500, s.balance("alice"))
	s.Equal(domain.BidAccepted, s.bid(winner.BidID).Status)
	s.Equal(domain.BidRejected, s.bid(loser.BidID).Status)
	s.notifier.AssertCalled(s.T(), "Notify", mock.Anything, "ext-alice", external.KindBidAccepted, mock.Anything)
}

func (s *BidServiceTestSuite) TestAcceptBid_OnlyOwner() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)

	_, err = s.service.AcceptBid(s.ctx, bid.BidID, "bob")

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Equal(domain.BidActive, s.bid(bid.BidID).Status)
}

func (s *BidServiceTestSuite) TestAcceptBid_NonOwnerCannotSeeBidStatus() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)
	_, err = s.service.RejectBid(s.ctx, bid.BidID, "owner")
	s.Require().NoError(err)

	_, err = s.service.AcceptBid(s.ctx, bid.BidID, "bob")
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.NotErrorIs(err, apperrors.ErrConflict)

	_, err = s.service.RejectBid(s.ctx, bid.BidID, "bob")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *BidServiceTestSuite) TestAcceptBid_LocksItemThenBidThenAccounts() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)
	s.locks.take()

	_, err = s.service.AcceptBid(s.ctx, bid.BidID, "owner")

	s.Require().NoError(err)
	s.Equal([]string{
		"item:item-1",
		"bid:" + bid.BidID,
		"account:alice",
		"account:owner",
		"balance:alice",
		"balance:owner",
		"bids:item-1",
	}, s.locks.take())
}

func (s *BidServiceTestSuite) TestConcurrentAccept_AtMostOneWins() {
	first, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)
	second, err := s.service.PlaceBid(s.ctx, "item-1", "bob", 600, 24)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, bidID := range []string{first.BidID, second.BidID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.service.AcceptBid(s.ctx, bidID, "owner")
		}()
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		// The item has changed hands, so the former owner is no longer allowed to accept.
		s.ErrorIs(err, apperrors.ErrForbidden)
	}
	s.Equal(1, accepted)

	statuses := []domain.BidStatus{s.bid(first.BidID).Status, s.bid(second.BidID).Status}
	s.ElementsMatch([]domain.BidStatus{domain.BidAccepted, domain.BidRejected}, statuses)
	s.EqualValues(2000, s.balance("alice")+s.balance("bob")+s.balance("owner")+royaltyOf(s, first, second))
}

// royaltyOf returns the royalty withheld by whichever bid was accepted.
func royaltyOf(s *BidServiceTestSuite, bids ...*domain.Bid) int64 {
	for _, b := range bids {
		if s.bid(b.BidID).Status == domain.BidAccepted {
			return domain.PercentOf(b.Amount, 10)
		}
	}
	return 0
}

func (s *BidServiceTestSuite) TestAcceptBid_ExpiredIsCommittedAsExpired() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 1)
	s.Require().NoError(err)
	s.now = s.now.Add(2 * time.Hour)

	_, err = s.service.AcceptBid(s.ctx, bid.BidID, "owner")

	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.Equal(domain.BidExpired, s.bid(bid.BidID).Status)
	s.Equal("owner", *s.item("item-1").OwnerID)
}

func (s *BidServiceTestSuite) TestAcceptBid_ShortBidderIsCancelled() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)
	s.seed(func(ctx context.Context, tx portsrepo.Tx) error {
		_, err := tx.AdjustBalance(ctx, "alice", -900, s.now)
		return err
	})

	_, err = s.service.AcceptBid(s.ctx, bid.BidID, "owner")

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(domain.BidCancelled, s.bid(bid.BidID).Status)
	s.Equal("owner", *s.item("item-1").OwnerID)
	s.EqualValues(100, s.balance("alice"))
}

func (s *BidServiceTestSuite) TestAcceptBid_AlreadyResolved() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)
	_, err = s.service.RejectBid(s.ctx, bid.BidID, "owner")
	s.Require().NoError(err)

	_, err = s.service.AcceptBid(s.ctx, bid.BidID, "owner")

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *BidServiceTestSuite) TestRejectAndCancel_Authorization() {
	bid, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 500, 24)
	s.Require().NoError(err)

	_, err = s.service.RejectBid(s.ctx, bid.BidID, "bob")
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.service.CancelBid(s.ctx, bid.BidID, "bob")
	s.ErrorIs(err, apperrors.ErrForbidden)

	cancelled, err := s.service.CancelBid(s.ctx, bid.BidID, "alice")
	s.Require().NoError(err)
	s.Equal(domain.BidCancelled, cancelled.Status)

	_, err = s.service.CancelBid(s.ctx, bid.BidID, "alice")
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *BidServiceTestSuite) TestExpireBids_SweepsOnlyStaleBids() {
	stale, err := s.service.PlaceBid(s.ctx, "item-1", "alice", 100, 1)
	s.Require().NoError(err)
	fresh, err := s.service.PlaceBid(s.ctx, "item-2", "bob", 100, 48)
	s.Require().NoError(err)
	s.now = s.now.Add(3 * time.Hour)

	n, err := s.service.ExpireBids(s.ctx)

	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(domain.BidExpired, s.bid(stale.BidID).Status)
	s.Equal(domain.BidActive, s.bid(fresh.BidID).Status)
}
