package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/email"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/logger"
	"github.com/Domenick1991/travelbooking/internal/repository"
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

	attempts := repository.NewCheckoutAttemptRepository(pool)
	sender := email.NewSender(zl.Named("email"))

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.CheckoutTopic, zl.Named("kafka"))
	defer consumer.Close()

	go func() {
		err := consumer.ConsumeCheckoutEvents(ctx, func(ctx context.Context, event kafka.CheckoutEvent) error {
			switch event.Type {
			case kafka.EventCheckoutSucceeded:
				return sender.Send(ctx, event)
			case kafka.EventCheckoutFailed:
				zl.Warn("checkout failed",
					zap.String("attempt_id", event.AttemptID),
					zap.Int64("user_id", event.UserID),
					zap.String("step", event.Step),
					zap.String("payment_intent_id", event.PaymentIntentID),
					zap.String("failure", event.Failure),
				)
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			zl.Error("consumer stopped", zap.Error(err))
		}
	}()

	abandonAfter := time.Duration(cfg.Worker.AbandonAfterMinutes) * time.Minute
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			abandoned, err := attempts.MarkAbandonedBefore(ctx, time.Now().Add(-abandonAfter))
			if err != nil {
				zl.Error("sweep checkout attempts", zap.Error(err))
				continue
			}
			for _, a := range abandoned {
				zl.Info("checkout attempt abandoned",
					zap.String("attempt_id", a.ID.String()),
					zap.Int64("user_id", a.UserID),
					zap.String("payment_intent_id", a.PaymentIntentID),
				)
			}
		case <-ctx.Done():
			zl.Info("shutting down worker")
			return
		}
	}
}
