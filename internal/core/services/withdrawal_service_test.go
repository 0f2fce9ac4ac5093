package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/SscSPs/collectibles_market/internal/utils/accounting"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PaymentDispatcher ---
type MockDispatcher struct {
	mock.Mock
}

var _ external.PaymentDispatcher = (*MockDispatcher)(nil)

func (m *MockDispatcher) Dispatch(ctx context.Context, destination string, amount int64) (string, error) {
	args := m.Called(ctx, destination, amount)
	return args.String(0), args.Error(1)
}

type WithdrawalServiceTestSuite struct {
	storeSuite
	dispatcher *MockDispatcher
	service    portssvc.WithdrawalSvc
}

func (s *WithdrawalServiceTestSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.dispatcher = new(MockDispatcher)
	s.service = services.NewWithdrawalService(s.executor, s.dispatcher, s.options()...)
	s.seedAccount("alice", 1000, nil)
}

func TestWithdrawalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalServiceTestSuite))
}

func (s *WithdrawalServiceTestSuite) TestWithdraw_Completes() {
	s.dispatcher.On("Dispatch", mock.Anything, "EQdest", int64(400)).Return("ref-1", nil).Once()

	entry, err := s.service.Withdraw(s.ctx, "alice", "EQdest", 400)

	s.Require().NoError(err)
	s.Equal(domain.EntryCompleted, entry.Status)
	s.Equal("ref-1", *entry.ExternalHash)
	s.EqualValues(600, s.balance("alice"))

	stored := s.entriesOfType("alice", domain.EntryWithdrawal)
	s.Require().Len(stored, 1)
	s.Equal(domain.EntryCompleted, stored[0].Status)
	s.dispatcher.AssertExpectations(s.T())
}

func (s *WithdrawalServiceTestSuite) TestWithdraw_DispatchFailureRefunds() {
	s.dispatcher.On("Dispatch", mock.Anything, "EQdest", int64(400)).Return("", errors.New("wallet offline")).Once()

	entry, err := s.service.Withdraw(s.ctx, "alice", "EQdest", 400)

	s.ErrorIs(err, apperrors.ErrExternalUnavailable)
	s.Require().NotNil(entry)
	s.Equal(domain.EntryFailed, entry.Status)
	s.EqualValues(1000, s.balance("alice"))

	all := s.entries("alice")
	s.Len(s.entriesOfType("alice", domain.EntryWithdrawalRefund), 1)
	s.Zero(accounting.SumEntries(all), "the failed debit and its refund cancel out")
}

func (s *WithdrawalServiceTestSuite) TestWithdraw_Refusals() {
	_, err := s.service.Withdraw(s.ctx, "alice", "EQdest", 0)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.Withdraw(s.ctx, "alice", "", 10)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.Withdraw(s.ctx, "alice", "EQdest", 1001)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.dispatcher.AssertNotCalled(s.T(), "Dispatch", mock.Anything, mock.Anything, mock.Anything)

	unconfigured := services.NewWithdrawalService(s.executor, nil, s.options()...)
	_, err = unconfigured.Withdraw(s.ctx, "alice", "EQdest", 10)
	s.ErrorIs(err, apperrors.ErrExternalUnavailable)
}
