package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/SscSPs/collectibles_market/internal/platform/random"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PresaleServiceTestSuite struct {
	storeSuite
	service portssvc.PresaleSvcFacade
}

func (s *PresaleServiceTestSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.service = services.NewPresaleService(s.executor, s.options(services.WithAdminExternalIDs([]string{"ext-admin"}))...)
	s.seedAccount("admin", 0, nil)
	s.seedSeries("series-1", 10, 1000, 0)
}

func TestPresaleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PresaleServiceTestSuite))
}

// seedPresale opens a raffle that started an hour ago and ends in an hour.
func (s *PresaleServiceTestSuite) seedPresale(id string, supply, maxPerUser int, price int64) {
	s.seed(func(ctx context.Context, tx portsrepo.Tx) error {
		return tx.SavePresale(ctx, domain.PreSale{
			PresaleID:   id,
			SeriesID:    "series-1",
			Price:       price,
			TotalSupply: supply,
			MaxPerUser:  maxPerUser,
			StartDate:   s.now.Add(-time.Hour),
			EndDate:     s.now.Add(time.Hour),
			Status:      domain.PresaleOpen,
		})
	})
}

func (s *PresaleServiceTestSuite) closeWindow() {
	s.now = s.now.Add(2 * time.Hour)
}

func (s *PresaleServiceTestSuite) TestPledge_LocksFunds() {
	s.seedPresale("presale-1", 2, 5, 100)
	s.seedAccount("alice", 1000, nil)

	pledge, err := s.service.Pledge(s.ctx, "presale-1", "alice", 3)

	s.Require().NoError(err)
	s.Equal(domain.PledgePending, pledge.Status)
	s.Equal(3, pledge.AmountLocked)
	s.EqualValues(700, s.balance("alice"))
	locks := s.entriesOfType("alice", domain.EntryPresaleLock)
	s.Require().Len(locks, 1)
	s.EqualValues(-300, locks[0].Amount)
}

func (s *PresaleServiceTestSuite) TestPledge_Refusals() {
	s.seedPresale("presale-1", 2, 5, 100)
	s.seedAccount("alice", 1000, nil)
	s.seedAccount("poor", 50, nil)

	_, err := s.service.Pledge(s.ctx, "presale-1", "alice", 0)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.Pledge(s.ctx, "presale-1", "poor", 1)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	_, err = s.service.Pledge(s.ctx, "presale-1", "alice", 4)
	s.Require().NoError(err)
	_, err = s.service.Pledge(s.ctx, "presale-1", "alice", 2)
	s.ErrorIs(err, apperrors.ErrValidation, "pledges are capped per user across calls")

	s.closeWindow()
	_, err = s.service.Pledge(s.ctx, "presale-1", "alice", 1)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = s.service.Pledge(s.ctx, "missing", "alice", 1)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

// Two units left, one pledge of five tickets at 100: two wins, three refunds.
func (s *PresaleServiceTestSuite) TestDraw_SinglePledgeOverSubscribed() {
	s.seedPresale("presale-1", 2, 5, 100)
	s.seedAccount("alice", 500, nil)
	_, err := s.service.Pledge(s.ctx, "presale-1", "alice", 5)
	s.Require().NoError(err)
	s.closeWindow()

	result, err := s.service.Draw(s.ctx, "presale-1", "admin")

	s.Require().NoError(err)
	s.Equal(2, result.WinLimit)
	s.Equal(5, result.Tickets)
	s.Require().Len(result.Outcomes, 1)
	outcome := result.Outcomes[0]
	s.Equal(2, outcome.Wins)
	s.Equal(3, outcome.Losses)
	s.EqualValues(300, outcome.Refund)
	s.Equal(domain.PledgeWon, outcome.Status)
	s.Len(outcome.MintNumbers, 2)

	refunds := s.entriesOfType("alice", domain.EntryRefund)
	s.Require().Len(refunds, 1)
	s.EqualValues(300, refunds[0].Amount)
	s.EqualValues(300, s.balance("alice"))

	presale, err := s.store.GetPresale(s.ctx, "presale-1")
	s.Require().NoError(err)
	s.Equal(domain.PresaleDrawn, presale.Status)
	s.Equal(2, presale.SoldCount)

	series, err := s.store.GetSeries(s.ctx, "series-1")
	s.Require().NoError(err)
	s.Equal(2, series.MintedCount)

	s.notifier.AssertCalled(s.T(), "Notify", mock.Anything, "ext-alice", external.KindPresaleResult, mock.Anything)
	s.broadcaster.AssertCalled(s.T(), "Emit", mock.Anything, external.EventPresaleDrawn, mock.Anything)
}

func (s *PresaleServiceTestSuite) TestDraw_RefundsInAccountOrderBeforeMinting() {
	s.seedPresale("presale-1", 1, 5, 100)
	s.seedAccount("zed", 500, nil)
	s.seedAccount("amy", 500, nil)
	_, err := s.service.Pledge(s.ctx, "presale-1", "zed", 2)
	s.Require().NoError(err)
	_, err = s.service.Pledge(s.ctx, "presale-1", "amy", 2)
	s.Require().NoError(err)
	s.closeWindow()
	s.locks.take()

	_, err = s.service.Draw(s.ctx, "presale-1", "admin")

	s.Require().NoError(err)
	locks := only(s.locks.take(), "account", "balance", "series")
	s.Equal([]string{"balance:amy", "balance:zed", "series:series-1"}, locks)
}

// Every locked ticket is either a minted item or refunded, whatever the shuffle.
func (s *PresaleServiceTestSuite) TestDraw_ConservesTicketsAndFunds() {
	for seed := uint64(1); seed <= 5; seed++ {
		s.Run(fmt.Sprintf("seed %d", seed), func() {
			s.SetupTest()
			service := services.NewPresaleService(s.executor, s.options(
				services.WithAdminExternalIDs([]string{"ext-admin"}),
				services.WithRandom(random.NewSeeded(seed)),
			)...)
			s.seedPresale("presale-1", 4, 5, 100)
			pledged := map[string]int{"p1": 5, "p2": 3, "p3": 1, "p4": 2}
			for id, tickets := range pledged {
				s.seedAccount(id, 1000, nil)
				_, err := service.Pledge(s.ctx, "presale-1", id, tickets)
				s.Require().NoError(err)
			}
			s.closeWindow()

			result, err := service.Draw(s.ctx, "presale-1", "admin")
			s.Require().NoError(err)

			totalWins := 0
			numbers := map[int]bool{}
			for _, o := range result.Outcomes {
				tickets := pledged[o.AccountID]
				s.Equal(tickets, o.Wins+o.Losses)
				s.EqualValues(int64(o.Losses)*100, o.Refund)
				s.EqualValues(1000-int64(o.Wins)*100, s.balance(o.AccountID))
				for _, n := range o.MintNumbers {
					s.False(numbers[n])
					numbers[n] = true
				}
				totalWins += o.Wins
			}
			s.Equal(4, totalWins)
			s.Len(numbers, 4)
		})
	}
}

func (s *PresaleServiceTestSuite) TestDraw_UnderSubscribedAllWin() {
	s.seedPresale("presale-1", 5, 5, 100)
	s.seedAccount("alice", 1000, nil)
	_, err := s.service.Pledge(s.ctx, "presale-1", "alice", 2)
	s.Require().NoError(err)
	s.closeWindow()

	result, err := s.service.Draw(s.ctx, "presale-1", "admin")

	s.Require().NoError(err)
	s.Equal(2, result.WinLimit)
	s.Equal(2, result.Outcomes[0].Wins)
	s.Zero(result.Outcomes[0].Refund)
	s.Empty(s.entriesOfType("alice", domain.EntryRefund))
}

func (s *PresaleServiceTestSuite) TestDraw_Refusals() {
	s.seedPresale("presale-1", 2, 5, 100)
	s.seedAccount("alice", 1000, nil)

	_, err := s.service.Draw(s.ctx, "presale-1", "admin")
	s.ErrorIs(err, apperrors.ErrInvalidState, "draw before the window closes")

	s.closeWindow()
	_, err = s.service.Draw(s.ctx, "presale-1", "alice")
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.service.Draw(s.ctx, "presale-1", "admin")
	s.Require().NoError(err)
	_, err = s.service.Draw(s.ctx, "presale-1", "admin")
	s.ErrorIs(err, apperrors.ErrConflict)
}
