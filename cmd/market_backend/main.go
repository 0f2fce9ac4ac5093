package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/collectibles_market/internal/adapters/outbound"
	"github.com/SscSPs/collectibles_market/internal/adapters/tonledger"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/SscSPs/collectibles_market/internal/handlers"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/SscSPs/collectibles_market/internal/platform/config"
	"github.com/SscSPs/collectibles_market/internal/repositories/cache"
	"github.com/SscSPs/collectibles_market/internal/repositories/database/pgsql"
	"github.com/SscSPs/collectibles_market/internal/repositories/memory"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/SscSPs/collectibles_market/internal/worker"
	"github.com/SscSPs/collectibles_market/pkg/database"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title Collectibles Market API
// @version 1.0
// @description Ownership and balance engine of the collectibles marketplace.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hub, err := outbound.NewHub(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := hub.Close(); err != nil {
			logger.Error("Failed to close outbound hub", slog.String("error", err.Error()))
		}
	}()

	collab := services.Collaborators{}
	if cfg.DepositAddress != "" {
		collab.Ledger = tonledger.NewTonCenterClient(cfg.TonCenterURL, cfg.TonCenterAPIKey, logger)
	}
	if cfg.WithdrawalServiceURL != "" {
		collab.Dispatcher = tonledger.NewWalletDispatcher(cfg.WithdrawalServiceURL, logger)
	}
	if hub.Redis != nil {
		collab.StatsCache = cache.NewRedisStatsCache(hub.Redis)
	}

	container := services.NewServiceContainer(cfg, store, collab,
		services.WithNotifier(hub.Notifier),
		services.WithBroadcaster(hub.Broadcaster),
	)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit, hub.Redis)
	if err != nil {
		return err
	}
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}
	handlers.RegisterRoutes(r, cfg, container, handlers.Deps{Limiter: limiter, Posthog: posthogClient})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	depositInterval := cfg.DepositPollInterval
	if collab.Ledger == nil {
		depositInterval = 0
	}
	scheduler := worker.NewScheduler(logger,
		worker.DepositJob(container.Deposit, depositInterval),
		worker.BidExpiryJob(container.Bid, cfg.BidExpiryInterval),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore returns the ledger store selected by STORE_DRIVER and its release func.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using the in-memory store")
		return memory.NewStore(), func() {}, nil
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pgsql.NewStore(pool), pool.Close, nil
}
