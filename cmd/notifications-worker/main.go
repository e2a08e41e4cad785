package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/retailpos-backend/internal/notifications"
	"github.com/angelmondragon/retailpos-backend/pkg/bootstrap"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/retailpos-backend/pkg/pubsub"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Start(ctx, "notifications-worker", bootstrap.Needs{DB: true, Migrate: true, Redis: true})
	if err != nil {
		os.Exit(1)
	}
	defer rt.Close()
	ctx = rt.Context(ctx)
	cfg, logg := rt.Config, rt.Logger

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, true, logg)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to bootstrap pubsub", err)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	dedupe, err := idempotency.NewManager(rt.Redis, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create idempotency manager", err)
	}
	consumer, err := notifications.NewConsumer(
		notifications.NewRepository(rt.DB.DB()),
		pubsubClient.NotificationSubscription(),
		dedupe,
		logg,
		cfg.App.CurrencySymbol,
	)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create notification consumer", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		DB:       rt.DB,
		Redis:    rt.Redis,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create worker", err)
	}

	rt.ServeMetrics(ctx, prometheus.DefaultGatherer)
	logg.Info(ctx, "starting notifications worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		bootstrap.Exit(ctx, logg, "notifications worker stopped unexpectedly", err)
	}
	logg.Info(ctx, "notifications worker shutting down gracefully")
}
