package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultOutboxRetentionDays       = 30
	defaultNotificationRetentionDays = 90
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPurger interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type notificationPurger interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type purgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

// retentionJob deletes rows older than a day-based window in one transaction.
type retentionJob struct {
	name  string
	logg  *logger.Logger
	db    txRunner
	days  int
	purge purgeFunc
	now   func() time.Time
}

// NewOutboxRetentionJob purges published outbox rows older than days.
// Unpublished rows are never touched.
func NewOutboxRetentionJob(logg *logger.Logger, db txRunner, repo outboxPurger, days int) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	job, err := newRetentionJob("outbox-retention", logg, db, days, defaultOutboxRetentionDays, repo.DeletePublishedBefore)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// NewNotificationCleanupJob purges read notifications older than days.
func NewNotificationCleanupJob(logg *logger.Logger, db txRunner, repo notificationPurger, days int) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	job, err := newRetentionJob("notification-cleanup", logg, db, days, defaultNotificationRetentionDays, repo.DeleteOlderThan)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func newRetentionJob(name string, logg *logger.Logger, db txRunner, days, fallback int, purge purgeFunc) (*retentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if days <= 0 {
		days = fallback
	}
	return &retentionJob{name: name, logg: logg, db: db, days: days, purge: purge, now: time.Now}, nil
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) cutoff() time.Time {
	return j.now().UTC().AddDate(0, 0, -j.days)
}

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.cutoff()
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.purge(ctx, tx, cutoff)
		deleted = rows
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.days,
		"rows_deleted":   deleted,
	}), "retention purge complete")
	return nil
}
