package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/accessor"
	"github.com/Domenick1991/travelbooking/internal/bootstrap"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/guard"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/logger"
	"github.com/Domenick1991/travelbooking/internal/middleware"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/checkout"
	"github.com/Domenick1991/travelbooking/internal/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zl.Named("kafka"))
	defer producer.Close()

	client := remote.New(cfg.Backend.BaseURL,
		remote.WithStore(redisCache),
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout()}),
		remote.WithStaleTime(cfg.Query.StaleTime()),
		remote.WithRetries(cfg.Query.Retries),
		remote.WithLogger(zl.Named("remote")),
	)
	backend := accessor.New(client)

	attempts := repository.NewCheckoutAttemptRepository(pool)
	forms := booking.NewBookingService(backend, zl.Named("booking"))
	sequencer := checkout.NewSequencer(
		forms,
		payment.NewStripeProcessor(cfg.Stripe, zl.Named("stripe")),
		backend,
		backend,
		redisCache,
		checkout.WithLedger(attempts),
		checkout.WithEvents(producer, cfg.Kafka.CheckoutTopic),
		checkout.WithLockTTL(cfg.Checkout.LockTTL()),
		checkout.WithLogger(zl.Named("checkout")),
	)

	sessions := session.NewManager(redisCache, backend, backend, cfg.Session, zl.Named("session"))
	access := guard.New(backend)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, zl.Named("ratelimit")).Middleware()

	router := bootstrap.NewRouter(cfg, zl, sessions, limiter, bootstrap.Handlers{
		Session:    api.NewSessionHandler(sessions, backend, limiter),
		Access:     api.NewAccessHandler(access, backend),
		Flights:    api.NewFlightHandler(forms, backend),
		Properties: api.NewPropertyHandler(forms, backend),
		Checkout:   api.NewCheckoutHandler(sequencer),
		Account:    api.NewAccountHandler(backend, attempts),
		Admin:      api.NewAdminHandler(backend, backend, access),
	},
		bootstrap.Dependency{Name: "redis", Check: redisCache.Ping},
		bootstrap.Dependency{Name: "postgres", Check: pool.Ping},
		bootstrap.Dependency{Name: "kafka", Check: producer.CheckConnection},
	)

	if err := bootstrap.Run(ctx, cfg, zl, router); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}
