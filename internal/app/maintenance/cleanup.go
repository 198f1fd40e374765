package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/pkg/logger"
)

const (
	defaultRetentionDays = 30
	defaultPurgeSpec     = "@daily"
)

// Cleaner coordinates background maintenance: soft-deleted listings and
// articles are purged for good once they age past the retention window.
// Notification rows are retained indefinitely and never touched here.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	purgeSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long soft-deleted records are retained before purge.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the purge job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.purgeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil db disables
// the purge job entirely.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:            db,
		now:           time.Now,
		retention:     defaultRetentionDays,
		purgeSchedule: defaultPurgeSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.db != nil

	return cleaner
}

// Start registers the purge job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if _, err := c.cron.AddFunc(c.purgeSchedule, func() {
		ctx := context.Background()
		cutoff := c.now().AddDate(0, 0, -c.retention)
		if stats, err := PurgeSoftDeleted(ctx, c.db, cutoff); err != nil {
			c.log.Warn("purge failed", zap.Error(err))
		} else if stats.Products > 0 || stats.Articles > 0 {
			c.log.Info("purged soft-deleted records",
				zap.Int64("products", stats.Products),
				zap.Int64("articles", stats.Articles),
			)
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the purge immediately. Primarily used in tests and during
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.db != nil {
		cutoff := c.now().AddDate(0, 0, -c.retention)
		if _, err := PurgeSoftDeleted(ctx, c.db, cutoff); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// PurgeStats captures the number of records removed per table.
type PurgeStats struct {
	Products int64
	Articles int64
}

// PurgeSoftDeleted permanently removes soft-deleted products and articles whose
// deletion happened before the cutoff.
func PurgeSoftDeleted(ctx context.Context, db *gorm.DB, cutoff time.Time) (PurgeStats, error) {
	if db == nil {
		return PurgeStats{}, errors.New("purge: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := PurgeStats{}

	result := db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&models.Product{})
	if result.Error != nil {
		return stats, fmt.Errorf("purge: products: %w", result.Error)
	}
	stats.Products = result.RowsAffected

	result = db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&models.Article{})
	if result.Error != nil {
		return stats, fmt.Errorf("purge: articles: %w", result.Error)
	}
	stats.Articles = result.RowsAffected

	return stats, nil
}
