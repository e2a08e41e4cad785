package main

import (
	"fmt"

	"github.com/angelmondragon/retailpos-backend/internal/cron"
	"github.com/angelmondragon/retailpos-backend/internal/notifications"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Housekeeping jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run-once [JOB...]",
		Short: "Run housekeeping jobs once under the cluster lock (all jobs when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true, true)
			if err != nil {
				return err
			}
			defer e.Close()

			lock, err := cron.NewRedisLock(e.redis, e.redis.LockKey("cron-worker"), e.cfg.Cron.LockTTL)
			if err != nil {
				return err
			}
			outboxJob, err := cron.NewOutboxRetentionJob(e.logg, e.db, outbox.NewRepository(e.db.DB()), e.cfg.Cron.OutboxRetentionDays)
			if err != nil {
				return err
			}
			notificationJob, err := cron.NewNotificationCleanupJob(e.logg, e.db, notifications.NewRepository(e.db.DB()), e.cfg.Cron.NotificationDays)
			if err != nil {
				return err
			}
			service, err := cron.NewService(cron.ServiceParams{
				Logger:   e.logg,
				Registry: cron.NewRegistry(outboxJob, notificationJob),
				Lock:     lock,
				Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
				Interval: e.cfg.Cron.Interval,
			})
			if err != nil {
				return err
			}
			if err := service.RunOnce(cmd.Context(), args...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "housekeeping complete")
			return nil
		},
	})
	return cmd
}
