package services_test

import (
	"sync"
	"testing"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	storeSuite
	service portssvc.AccountSvcFacade
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.service = services.NewAccountService(s.executor, s.store, s.options(services.WithAdminExternalIDs([]string{"tg-admin"}))...)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) TestEnsureAccount_CreatesOnce() {
	identity := domain.Identity{ExternalID: "tg-1", Username: "alice"}

	first, err := s.service.EnsureAccount(s.ctx, identity)
	s.Require().NoError(err)
	second, err := s.service.EnsureAccount(s.ctx, identity)
	s.Require().NoError(err)

	s.Equal(first.AccountID, second.AccountID)
	s.Equal("alice", first.Username)
	s.Len(first.DepositMemo, 13)
	s.Zero(first.Balance)
	s.False(first.IsAdmin)
	s.Nil(first.ReferredBy)
}

// Resolving a known identity runs on every authenticated request and must not lock the row.
func (s *AccountServiceTestSuite) TestEnsureAccount_ExistingTakesNoLocks() {
	identity := domain.Identity{ExternalID: "tg-1", Username: "alice"}
	_, err := s.service.EnsureAccount(s.ctx, identity)
	s.Require().NoError(err)
	s.locks.take()

	_, err = s.service.EnsureAccount(s.ctx, identity)

	s.Require().NoError(err)
	s.Empty(s.locks.take())
}

func (s *AccountServiceTestSuite) TestEnsureAccount_ConcurrentFirstRequests() {
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc, err := s.service.EnsureAccount(s.ctx, domain.Identity{ExternalID: "tg-race"})
			if s.NoError(err) {
				ids[i] = acc.AccountID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		s.Equal(ids[0], id)
	}
}

func (s *AccountServiceTestSuite) TestEnsureAccount_ReferrerAndAdmin() {
	referrer, err := s.service.EnsureAccount(s.ctx, domain.Identity{ExternalID: "tg-admin"})
	s.Require().NoError(err)
	s.True(referrer.IsAdmin)

	referred, err := s.service.EnsureAccount(s.ctx, domain.Identity{ExternalID: "tg-2", ReferrerExternalID: "tg-admin"})
	s.Require().NoError(err)
	s.Require().NotNil(referred.ReferredBy)
	s.Equal(referrer.AccountID, *referred.ReferredBy)

	orphan, err := s.service.EnsureAccount(s.ctx, domain.Identity{ExternalID: "tg-3", ReferrerExternalID: "tg-unknown"})
	s.Require().NoError(err)
	s.Nil(orphan.ReferredBy)

	self, err := s.service.EnsureAccount(s.ctx, domain.Identity{ExternalID: "tg-4", ReferrerExternalID: "tg-4"})
	s.Require().NoError(err)
	s.Nil(self.ReferredBy)
}

func (s *AccountServiceTestSuite) TestEnsureAccount_RequiresSubject() {
	_, err := s.service.EnsureAccount(s.ctx, domain.Identity{})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	_, err := s.service.GetAccountByID(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestListLedgerEntries_Pages() {
	s.seedSeries("series-1", 10, 10, 0)
	s.seedAccount("buyer", 100, nil)
	market := services.NewMarketService(s.executor, s.options()...)
	for range 3 {
		_, err := market.Mint(s.ctx, "series-1", "buyer")
		s.Require().NoError(err)
	}

	page, next, err := s.service.ListLedgerEntries(s.ctx, "buyer", 2, nil)
	s.Require().NoError(err)
	s.Len(page, 2)
	s.Require().NotNil(next)

	rest, next, err := s.service.ListLedgerEntries(s.ctx, "buyer", 2, next)
	s.Require().NoError(err)
	s.Len(rest, 1)
	s.Nil(next)
}
