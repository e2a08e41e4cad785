package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/retailpos-backend/internal/cron"
	"github.com/angelmondragon/retailpos-backend/internal/notifications"
	"github.com/angelmondragon/retailpos-backend/pkg/bootstrap"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Start(ctx, "cron-worker", bootstrap.Needs{DB: true, Migrate: true, Redis: true})
	if err != nil {
		os.Exit(1)
	}
	defer rt.Close()
	ctx = rt.Context(ctx)
	cfg, logg := rt.Config, rt.Logger

	service, err := newCronService(rt, metrics.NewCronJobMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create cron service", err)
	}

	rt.ServeMetrics(ctx, prometheus.DefaultGatherer)
	logg.Info(logg.WithField(ctx, "interval", cfg.Cron.Interval.String()), "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		bootstrap.Exit(ctx, logg, "cron worker stopped unexpectedly", err)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

// newCronService registers the housekeeping jobs behind the shared redis lease.
func newCronService(rt *bootstrap.Runtime, jobMetrics *metrics.CronJobMetrics) (*cron.Service, error) {
	cfg := rt.Config
	lock, err := cron.NewRedisLock(rt.Redis, rt.Redis.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		return nil, err
	}
	outboxJob, err := cron.NewOutboxRetentionJob(rt.Logger, rt.DB, outbox.NewRepository(rt.DB.DB()), cfg.Cron.OutboxRetentionDays)
	if err != nil {
		return nil, err
	}
	notificationJob, err := cron.NewNotificationCleanupJob(rt.Logger, rt.DB, notifications.NewRepository(rt.DB.DB()), cfg.Cron.NotificationDays)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   rt.Logger,
		Registry: cron.NewRegistry(outboxJob, notificationJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
}
