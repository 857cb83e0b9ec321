package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanishkhot/mayhouse-sub002/internal/chain"
	"github.com/tanishkhot/mayhouse-sub002/internal/config"
	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/event"
	"github.com/tanishkhot/mayhouse-sub002/internal/fee"
	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	"github.com/tanishkhot/mayhouse-sub002/internal/postgres"
	redisx "github.com/tanishkhot/mayhouse-sub002/internal/redis"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/service"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/query"
	"github.com/tanishkhot/mayhouse-sub002/internal/task"
	httpgin "github.com/tanishkhot/mayhouse-sub002/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	events     *event.Publisher
	tracker    *task.ConfirmationTracker
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	chainClient, err := chain.Dial(context.Background(), chain.Config{
		RPCURL:        cfg.Chain.RPCURL,
		PrivateKey:    cfg.Chain.PrivateKey,
		ChainID:       cfg.Chain.ChainID,
		Confirmations: cfg.Chain.Confirmations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chain client: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewBookingEventsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	if err := seedPlatformConfig(context.Background(), store, cfg.Escrow); err != nil {
		return nil, fmt.Errorf("failed to seed platform config: %w", err)
	}

	events, err := event.NewPublisher(0, pubsub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	gw := gateway.New(chainClient, logger)

	tracker, err := task.NewConfirmationTracker(store, chainClient, gw, cfg.Chain.ConfirmInterval, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize confirmation tracker: %w", err)
	}

	// Initialize services
	services := service.NewServices(store, cache, events, limiter, gw, service.Config{
		Query: query.Config{},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		events:  events,
		tracker: tracker,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	a.tracker.Start()

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")

		if err := a.tracker.Stop(); err != nil {
			a.logger.Error("failed to stop confirmation tracker", "error", err)
		}
		a.events.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// seedPlatformConfig inserts the initial platform configuration row if
// the database does not have one yet. An existing row wins over the
// environment so admin updates survive restarts.
func seedPlatformConfig(ctx context.Context, store *postgresrepo.Store, escrow config.EscrowConfig) error {
	owner, err := domain.ParseAddress(escrow.Owner)
	if err != nil {
		return fmt.Errorf("invalid ESCROW_OWNER: %w", err)
	}

	wallet, err := domain.ParseAddress(escrow.Wallet)
	if err != nil {
		return fmt.Errorf("invalid ESCROW_PLATFORM_WALLET: %w", err)
	}

	if err := fee.ValidatePercents(escrow.FeePct, escrow.StakePct); err != nil {
		return err
	}

	return store.Platform().Seed(ctx, &domain.PlatformConfig{
		Owner:    owner,
		Wallet:   wallet,
		FeePct:   escrow.FeePct,
		StakePct: escrow.StakePct,
	})
}
