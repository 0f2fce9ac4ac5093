package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/handlers"
	"github.com/SscSPs/collectibles_market/internal/platform/config"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mocks ---

type MockAccountService struct{ mock.Mock }

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	next, _ := args.Get(1).(*string)
	return args.Get(0).([]domain.LedgerEntry), next, args.Error(2)
}

func (m *MockAccountService) EnsureAccount(ctx context.Context, identity domain.Identity) (*domain.Account, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

type MockMarketService struct{ mock.Mock }

func (m *MockMarketService) purchase(args mock.Arguments) (*domain.Purchase, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *MockMarketService) item(args mock.Arguments) (*domain.Item, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockMarketService) Mint(ctx context.Context, seriesID, buyerID string) (*domain.Purchase, error) {
	return m.purchase(m.Called(ctx, seriesID, buyerID))
}

func (m *MockMarketService) Buy(ctx context.Context, itemID, buyerID string) (*domain.Purchase, error) {
	return m.purchase(m.Called(ctx, itemID, buyerID))
}

func (m *MockMarketService) BuyByNumber(ctx context.Context, seriesID string, mintNumber int, buyerID string) (*domain.Purchase, error) {
	return m.purchase(m.Called(ctx, seriesID, mintNumber, buyerID))
}

func (m *MockMarketService) List(ctx context.Context, itemID, ownerID string, price int64) (*domain.Item, error) {
	return m.item(m.Called(ctx, itemID, ownerID, price))
}

func (m *MockMarketService) Delist(ctx context.Context, itemID, ownerID string) (*domain.Item, error) {
	return m.item(m.Called(ctx, itemID, ownerID))
}

func (m *MockMarketService) Transfer(ctx context.Context, itemID, ownerID, recipientExternalID string) (*domain.Item, error) {
	return m.item(m.Called(ctx, itemID, ownerID, recipientExternalID))
}

var _ portssvc.MarketSvcFacade = (*MockMarketService)(nil)

type MockBidService struct{ mock.Mock }

func (m *MockBidService) bid(args mock.Arguments) (*domain.Bid, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bid), args.Error(1)
}

func (m *MockBidService) PlaceBid(ctx context.Context, itemID, bidderID string, amount int64, expiryHours int) (*domain.Bid, error) {
	return m.bid(m.Called(ctx, itemID, bidderID, amount, expiryHours))
}

func (m *MockBidService) AcceptBid(ctx context.Context, bidID, ownerID string) (*domain.Purchase, error) {
	args := m.Called(ctx, bidID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *MockBidService) RejectBid(ctx context.Context, bidID, ownerID string) (*domain.Bid, error) {
	return m.bid(m.Called(ctx, bidID, ownerID))
}

func (m *MockBidService) CancelBid(ctx context.Context, bidID, bidderID string) (*domain.Bid, error) {
	return m.bid(m.Called(ctx, bidID, bidderID))
}

func (m *MockBidService) ExpireBids(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var _ portssvc.BidSvcFacade = (*MockBidService)(nil)

type MockPresaleService struct{ mock.Mock }

func (m *MockPresaleService) Pledge(ctx context.Context, presaleID, accountID string, ticketCount int) (*domain.PresalePledge, error) {
	args := m.Called(ctx, presaleID, accountID, ticketCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresalePledge), args.Error(1)
}

func (m *MockPresaleService) Draw(ctx context.Context, presaleID, adminID string) (*domain.DrawResult, error) {
	args := m.Called(ctx, presaleID, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DrawResult), args.Error(1)
}

var _ portssvc.PresaleSvcFacade = (*MockPresaleService)(nil)

type MockWithdrawalService struct{ mock.Mock }

func (m *MockWithdrawalService) Withdraw(ctx context.Context, accountID, destination string, amount int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, destination, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

type MockStatsService struct{ mock.Mock }

func (m *MockStatsService) FloorPrice(ctx context.Context, seriesID string) (int64, error) {
	args := m.Called(ctx, seriesID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsService) CollectionFloorPrice(ctx context.Context, collectionID string) (int64, error) {
	args := m.Called(ctx, collectionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsService) Volume(ctx context.Context, seriesID string) (int64, error) {
	args := m.Called(ctx, seriesID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsService) CollectionVolume(ctx context.Context, collectionID string) (int64, error) {
	args := m.Called(ctx, collectionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsService) SeriesStats(ctx context.Context, seriesID string) (*domain.MarketStats, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketStats), args.Error(1)
}

func (m *MockStatsService) CollectionStats(ctx context.Context, collectionID string) (*domain.MarketStats, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketStats), args.Error(1)
}

func (m *MockStatsService) PriceHistory(ctx context.Context, itemID string) ([]domain.PricePoint, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricePoint), args.Error(1)
}

var _ portssvc.StatsSvc = (*MockStatsService)(nil)

// --- Test Suite ---

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "market-test"
	callerExt  = "ext-1"
	callerAcc  = "acc-1"
)

type HandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	accounts   *MockAccountService
	market     *MockMarketService
	bids       *MockBidService
	presales   *MockPresaleService
	withdrawal *MockWithdrawalService
	stats      *MockStatsService
	token      string
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(handlers.RegisterValidators())
}

func (s *HandlerTestSuite) SetupTest() {
	s.accounts = new(MockAccountService)
	s.market = new(MockMarketService)
	s.bids = new(MockBidService)
	s.presales = new(MockPresaleService)
	s.withdrawal = new(MockWithdrawalService)
	s.stats = new(MockStatsService)

	s.accounts.On("EnsureAccount", mock.Anything, mock.MatchedBy(func(id domain.Identity) bool {
		return id.ExternalID == callerExt
	})).Return(&domain.Account{AccountID: callerAcc, ExternalID: callerExt}, nil).Maybe()

	cfg := &config.Config{
		JWTSecret:    testSecret,
		JWTIssuer:    testIssuer,
		IsProduction: true,
	}
	container := &portssvc.ServiceContainer{
		Account:    s.accounts,
		Market:     s.market,
		Bid:        s.bids,
		Presale:    s.presales,
		Withdrawal: s.withdrawal,
		Stats:      s.stats,
	}
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container, handlers.Deps{})

	token, err := utils.GenerateJWT(callerExt, "alice", "", testSecret, time.Hour, testIssuer)
	s.Require().NoError(err)
	s.token = token
}

func (s *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestRequiresBearerToken() {
	s.token = ""
	w := s.do(http.MethodGet, "/api/v1/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.accounts.AssertNotCalled(s.T(), "EnsureAccount", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestGetMe() {
	s.accounts.On("GetAccountByID", mock.Anything, callerAcc).
		Return(&domain.Account{AccountID: callerAcc, ExternalID: callerExt, Balance: 1_500_000_000}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/me", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	var res dto.AccountResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.Equal(callerAcc, res.AccountID)
	s.Equal("1.5", res.BalanceTON)
}

func (s *HandlerTestSuite) TestListLedger_RejectsOversizedLimit() {
	w := s.do(http.MethodGet, "/api/v1/me/ledger?limit=1000", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.accounts.AssertNotCalled(s.T(), "ListLedgerEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestMint_InsufficientFundsIs402() {
	s.market.On("Mint", mock.Anything, "s-1", callerAcc).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := s.do(http.MethodPost, "/api/v1/series/s-1/mint", nil)

	s.Equal(http.StatusPaymentRequired, w.Code)
	s.market.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestMint_SoldOutIs409() {
	s.market.On("Mint", mock.Anything, "s-1", callerAcc).Return(nil, apperrors.ErrConflict).Once()
	w := s.do(http.MethodPost, "/api/v1/series/s-1/mint", nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestBuyByNumber() {
	owner := callerAcc
	s.market.On("BuyByNumber", mock.Anything, "s-1", 7, callerAcc).Return(&domain.Purchase{
		Item:  domain.Item{ItemID: "i-7", SeriesID: "s-1", MintNumber: 7, OwnerID: &owner},
		Order: domain.Order{OrderID: "o-1", Price: 10, Type: domain.OrderPrimary},
	}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/series/s-1/items/7/buy", nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	var res dto.PurchaseResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.Equal(7, res.Item.MintNumber)
	s.Equal(domain.OrderPrimary, res.Order.Type)

	w = s.do(http.MethodPost, "/api/v1/series/s-1/items/seven/buy", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestList_ConvertsTONToNano() {
	price := int64(1_500_000_000)
	s.market.On("List", mock.Anything, "i-1", callerAcc, price).
		Return(&domain.Item{ItemID: "i-1", IsListed: true, ListPrice: &price}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/items/i-1/list", map[string]any{"price": "1.5"})

	s.Require().Equal(http.StatusOK, w.Code)
	var res dto.ItemResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.Require().NotNil(res.ListPriceTON)
	s.Equal("1.5", *res.ListPriceTON)
}

func (s *HandlerTestSuite) TestList_RejectsNonPositivePrice() {
	w := s.do(http.MethodPost, "/api/v1/items/i-1/list", map[string]any{"price": "-1"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.market.AssertNotCalled(s.T(), "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestList_NotOwnerIs403() {
	s.market.On("List", mock.Anything, "i-1", callerAcc, int64(1_000_000_000)).
		Return(nil, apperrors.ErrForbidden).Once()
	w := s.do(http.MethodPost, "/api/v1/items/i-1/list", map[string]any{"price": 1})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestTransfer_ListedItemIs422() {
	s.market.On("Transfer", mock.Anything, "i-1", callerAcc, "ext-2").
		Return(nil, apperrors.ErrInvalidState).Once()
	w := s.do(http.MethodPost, "/api/v1/items/i-1/transfer", map[string]any{"recipientID": "ext-2"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestPlaceBid_DefaultsExpiry() {
	s.bids.On("PlaceBid", mock.Anything, "i-1", callerAcc, int64(2_000_000_000), 0).
		Return(&domain.Bid{BidID: "b-1", ItemID: "i-1", Amount: 2_000_000_000, Status: domain.BidActive}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/items/i-1/bids", map[string]any{"amount": "2"})

	s.Require().Equal(http.StatusCreated, w.Code)
	var res dto.BidResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.Equal("2", res.AmountTON)
}

func (s *HandlerTestSuite) TestAcceptBid_LostRaceIs409() {
	s.bids.On("AcceptBid", mock.Anything, "b-1", callerAcc).Return(nil, apperrors.ErrConflict).Once()
	w := s.do(http.MethodPost, "/api/v1/bids/b-1/accept", nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestPledgeAndDraw() {
	s.presales.On("Pledge", mock.Anything, "p-1", callerAcc, 3).
		Return(&domain.PresalePledge{PledgeID: "pl-1", PresaleID: "p-1", AmountLocked: 3, Status: domain.PledgePending}, nil).Once()
	s.presales.On("Draw", mock.Anything, "p-1", callerAcc).Return(nil, apperrors.ErrForbidden).Once()

	w := s.do(http.MethodPost, "/api/v1/presales/p-1/pledges", map[string]any{"tickets": 3})
	s.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/v1/presales/p-1/draw", nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestWithdraw() {
	dest := "0:" + string(bytes.Repeat([]byte("a"), 64))
	s.withdrawal.On("Withdraw", mock.Anything, callerAcc, dest, int64(500_000_000)).
		Return(nil, apperrors.ErrExternalUnavailable).Once()

	w := s.do(http.MethodPost, "/api/v1/withdrawals", map[string]any{"destination": dest, "amount": "0.5"})
	s.Equal(http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodPost, "/api/v1/withdrawals", map[string]any{"destination": "not-an-address", "amount": "0.5"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.withdrawal.AssertNumberOfCalls(s.T(), "Withdraw", 1)
}

func (s *HandlerTestSuite) TestSeriesStats() {
	s.stats.On("SeriesStats", mock.Anything, "s-1").
		Return(&domain.MarketStats{ScopeID: "s-1", FloorPrice: 100, Volume: 300, Sales: 2}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/series/s-1/stats", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	var res dto.StatsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.Equal(int64(2), res.Sales)
	s.False(res.FromListing)
}
