package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock StatsCache ---
type MockStatsCache struct {
	mock.Mock
}

var _ portsrepo.StatsCache = (*MockStatsCache)(nil)

func (m *MockStatsCache) Get(ctx context.Context, key string) (*domain.MarketStats, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.MarketStats), args.Bool(1)
}

func (m *MockStatsCache) Set(ctx context.Context, key string, stats domain.MarketStats, ttl time.Duration) {
	m.Called(ctx, key, stats, ttl)
}

type StatsServiceTestSuite struct {
	storeSuite
	service portssvc.StatsSvc
}

func (s *StatsServiceTestSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.service = services.NewStatsService(s.store, nil, 0, s.options()...)

	s.seedSeries("cheap", 10, 100, 0)
	s.seedSeries("dear", 10, 500, 0)
	s.seedAccount("owner", 0, nil)
	s.seedAccount("buyer", 10_000, nil)
}

func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}

func (s *StatsServiceTestSuite) TestFloorPrice_FallsBackToSeriesPrice() {
	floor, err := s.service.FloorPrice(s.ctx, "dear")
	s.Require().NoError(err)
	s.EqualValues(500, floor)

	floor, err = s.service.CollectionFloorPrice(s.ctx, "col-1")
	s.Require().NoError(err)
	s.EqualValues(100, floor)
}

func (s *StatsServiceTestSuite) TestFloorPrice_UsesCheapestListing() {
	s.seedItem("a", "dear", 1, "owner", ptrTo(int64(700)))
	s.seedItem("b", "dear", 2, "owner", ptrTo(int64(450)))
	s.seedItem("c", "dear", 3, "owner", nil)

	stats, err := s.service.SeriesStats(s.ctx, "dear")

	s.Require().NoError(err)
	s.EqualValues(450, stats.FloorPrice)
	s.True(stats.FromListing)
}

func (s *StatsServiceTestSuite) TestVolumeAndHistory() {
	market := services.NewMarketService(s.executor, s.options()...)
	minted, err := market.Mint(s.ctx, "cheap", "buyer")
	s.Require().NoError(err)
	_, err = market.List(s.ctx, minted.Item.ItemID, "buyer", 300)
	s.Require().NoError(err)
	s.seedAccount("second", 1000, nil)
	_, err = market.Buy(s.ctx, minted.Item.ItemID, "second")
	s.Require().NoError(err)

	volume, err := s.service.Volume(s.ctx, "cheap")
	s.Require().NoError(err)
	s.EqualValues(400, volume)

	total, err := s.service.CollectionVolume(s.ctx, "col-1")
	s.Require().NoError(err)
	s.EqualValues(400, total)

	history, err := s.service.PriceHistory(s.ctx, minted.Item.ItemID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(domain.OrderPrimary, history[0].Type)
	s.Equal(domain.OrderSecondary, history[1].Type)
}

func (s *StatsServiceTestSuite) TestCacheHitSkipsStore() {
	cache := new(MockStatsCache)
	cached := &domain.MarketStats{ScopeID: "dear", FloorPrice: 1}
	cache.On("Get", mock.Anything, "series:dear").Return(cached, true).Once()
	service := services.NewStatsService(s.store, cache, time.Minute, s.options()...)

	floor, err := service.FloorPrice(s.ctx, "dear")

	s.Require().NoError(err)
	s.EqualValues(1, floor)
	cache.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *StatsServiceTestSuite) TestCacheMissStoresResult() {
	cache := new(MockStatsCache)
	cache.On("Get", mock.Anything, "collection:col-1").Return(nil, false).Once()
	cache.On("Set", mock.Anything, "collection:col-1", mock.MatchedBy(func(st domain.MarketStats) bool {
		return st.FloorPrice == 100 && !st.FromListing
	}), time.Minute).Once()
	service := services.NewStatsService(s.store, cache, time.Minute, s.options()...)

	_, err := service.CollectionStats(s.ctx, "col-1")

	s.Require().NoError(err)
	cache.AssertExpectations(s.T())
}
