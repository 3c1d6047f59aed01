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

	"github.com/nightowl-club/tablepass/internal/config"
	"github.com/nightowl-club/tablepass/internal/mailer"
	"github.com/nightowl-club/tablepass/internal/outbox"
	gateway "github.com/nightowl-club/tablepass/internal/payment"
	"github.com/nightowl-club/tablepass/internal/postgres"
	"github.com/nightowl-club/tablepass/internal/redis"
	postgresrepo "github.com/nightowl-club/tablepass/internal/repository/postgres"
	redisrepo "github.com/nightowl-club/tablepass/internal/repository/redis"
	"github.com/nightowl-club/tablepass/internal/service"
	"github.com/nightowl-club/tablepass/internal/service/availability"
	"github.com/nightowl-club/tablepass/internal/service/booking"
	"github.com/nightowl-club/tablepass/internal/service/checkin"
	"github.com/nightowl-club/tablepass/internal/service/party"
	"github.com/nightowl-club/tablepass/internal/service/payment"
	"github.com/nightowl-club/tablepass/internal/token"
	httpgin "github.com/nightowl-club/tablepass/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	emitter    *outbox.Client
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

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// The outbox is best-effort: without a broker the service still takes
	// bookings and check-ins, it just emits nothing downstream.
	var emitter outbox.Emitter
	var emitterClient *outbox.Client
	if cfg.Rabbit.URL != "" {
		emitterClient, err = outbox.New(cfg.Rabbit.URL, cfg.Rabbit.Queue, logger)
		if err != nil {
			logger.Warn("outbox unavailable, events will not be emitted", "error", err)
		} else {
			emitter = emitterClient
		}
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewBookingsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "book", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.PassTTL)
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Password: cfg.SMTP.Password,
	}, logger)
	gw := gateway.NewClient(cfg.Gateway.BaseURL)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, codec, gw, mail, emitter, logger, service.Config{
		Availability: availability.Config{},
		Booking: booking.Config{
			DefaultPhoneRegion: cfg.Booking.PhoneRegion,
		},
		Payment: payment.Config{
			SuccessURL: cfg.Gateway.SuccessURL,
			CancelURL:  cfg.Gateway.CancelURL,
		},
		Party: party.Config{
			PublicBaseURL: cfg.Booking.PublicBaseURL,
		},
		Checkin: checkin.Config{
			XPAmount:       cfg.Booking.XPAmount,
			BonusThreshold: cfg.Booking.BonusThreshold,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(
		services,
		idempotencyStore,
		logger,
		httpgin.IdentityMiddleware(cfg.Token.Secret),
	)

	return &App{
		cfg:     cfg,
		logger:  logger,
		emitter: emitterClient,
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
		if a.emitter != nil {
			a.emitter.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
