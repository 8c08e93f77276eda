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

	"github.com/guillermo-martinez42/cc6-trivago/internal/config"
	"github.com/guillermo-martinez42/cc6-trivago/internal/postgres"
	redisx "github.com/guillermo-martinez42/cc6-trivago/internal/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/refdata"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	postgresrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/postgres"
	redisrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/booking"
	httpgin "github.com/guillermo-martinez42/cc6-trivago/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pubsub     *redisx.SeatsPubSub
	cache      *redisrepo.Cache
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

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewSeatsPubSub(rdb)
	limiter := redisrepo.NewAuthAttemptLimiter(rdb, 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// In-memory state seeded from the static schedule
	inventory := memory.NewSeatInventory(refdata.SeededOccupied)
	cards := memory.NewCardRegistry(refdata.Cards)
	sessions := memory.NewBookingStore()

	// Initialize services
	services := service.NewServices(
		inventory,
		cards,
		sessions,
		booking.NewPgLedger(store),
		cache,
		pubsub,
		limiter,
		service.Config{},
	)

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		pubsub: pubsub,
		cache:  cache,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Drop cached seat maps when another instance changes occupancy
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, flightKey string) {
			_ = a.cache.InvalidateFlight(ctx, flightKey)
		})
		if err != nil && gCtx.Err() == nil {
			return fmt.Errorf("seat-change subscription failed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
