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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExternalLedger ---
type MockExternalLedger struct {
	mock.Mock
}

var _ external.ExternalLedger = (*MockExternalLedger)(nil)

func (m *MockExternalLedger) ListRecentInbound(ctx context.Context, address string, count int) ([]domain.InboundTransfer, error) {
	args := m.Called(ctx, address, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InboundTransfer), args.Error(1)
}

type DepositPollerTestSuite struct {
	storeSuite
	ledger *MockExternalLedger
	poller portssvc.DepositPollerSvc
}

func (s *DepositPollerTestSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.ledger = new(MockExternalLedger)
	s.poller = services.NewDepositPoller(s.executor, s.ledger, "EQplatform", 10, s.options()...)
	s.seedAccount("alice", 0, nil)
}

func TestDepositPollerTestSuite(t *testing.T) {
	suite.Run(t, new(DepositPollerTestSuite))
}

func (s *DepositPollerTestSuite) TestPollOnce_CreditsOncePerHash() {
	transfers := []domain.InboundTransfer{
		{Hash: "h1", Memo: "memo-alice", Amount: 2_000_000_000, Source: "EQsender"},
	}
	s.ledger.On("ListRecentInbound", mock.Anything, "EQplatform", 10).Return(transfers, nil)

	first, err := s.poller.PollOnce(s.ctx)
	s.Require().NoError(err)
	second, err := s.poller.PollOnce(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, first.Credited)
	s.Equal(0, second.Credited)
	s.Equal(1, second.Duplicates)
	s.EqualValues(2_000_000_000, s.balance("alice"))

	deposits := s.entriesOfType("alice", domain.EntryDeposit)
	s.Require().Len(deposits, 1)
	s.Equal("h1", *deposits[0].ExternalHash)

	s.notifier.AssertNumberOfCalls(s.T(), "Notify", 1)
	s.broadcaster.AssertCalled(s.T(), "Emit", mock.Anything, external.EventBalanceDeposit, mock.Anything)
	s.broadcaster.AssertCalled(s.T(), "Emit", mock.Anything, external.EventActivityNew, mock.Anything)
}

func (s *DepositPollerTestSuite) TestPollOnce_SkipsAndRecordsUnmatched() {
	transfers := []domain.InboundTransfer{
		{Hash: "no-memo", Memo: "", Amount: 100},
		{Hash: "zero", Memo: "memo-alice", Amount: 0},
		{Hash: "stranger", Memo: "who-is-this", Amount: 100},
		{Hash: "ok", Memo: "memo-alice", Amount: 50},
	}
	s.ledger.On("ListRecentInbound", mock.Anything, "EQplatform", 10).Return(transfers, nil)

	report, err := s.poller.PollOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.PollReport{Observed: 4, Credited: 1, Unmatched: 1, Skipped: 2}, report)
	s.EqualValues(50, s.balance("alice"))

	again, err := s.poller.PollOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(again.Unmatched, "an unmatched hash is recorded once")
	s.Equal(2, again.Duplicates)
}

func (s *DepositPollerTestSuite) TestPollOnce_ProviderFailure() {
	s.ledger.On("ListRecentInbound", mock.Anything, "EQplatform", 10).Return(nil, errors.New("503 from provider"))

	report, err := s.poller.PollOnce(s.ctx)

	s.ErrorIs(err, apperrors.ErrExternalUnavailable)
	s.Zero(report.Credited)
	s.EqualValues(0, s.balance("alice"))
}

func (s *DepositPollerTestSuite) TestPollOnce_NotConfigured() {
	poller := services.NewDepositPoller(s.executor, nil, "", 0, s.options()...)

	_, err := poller.PollOnce(s.ctx)

	s.ErrorIs(err, apperrors.ErrExternalUnavailable)
}
