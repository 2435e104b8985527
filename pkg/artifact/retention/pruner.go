package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/telemetry/metrics"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain old versions.
	// The latest version of every artifact is always kept.
	// 0 means keep versions forever.
	RetentionDays int

	// MaxVersions is the number of versions kept per artifact.
	// 0 means unlimited.
	MaxVersions int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		MaxVersions:   0,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention policies on saved artifact versions.
type Pruner struct {
	store     artifact.Pruner
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	metrics   *metrics.Collector
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(store artifact.Pruner, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "artifact.retention"),
		now:    time.Now,
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// SetMetrics records prune runs and deleted versions on collector.
func (p *Pruner) SetMetrics(collector *metrics.Collector) {
	p.metrics = collector
}

// Prune deletes artifact versions outside the retention policy.
//
// Pruning happens in two phases:
// 1. Age-based: delete versions older than RetentionDays
// 2. Count-based: keep only the newest MaxVersions per artifact
//
// Returns the total number of versions deleted.
func (p *Pruner) Prune(ctx context.Context) (totalDeleted int64, err error) {
	if p.metrics != nil {
		start := p.now()
		defer func() {
			status := metrics.StatusSuccess
			if err != nil {
				status = metrics.StatusError
			}
			p.metrics.RecordStoreOperation("prune", status, p.now().Sub(start))
			p.metrics.RecordPruned(totalDeleted)
		}()
	}

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.store.PruneBefore(ctx, cutoff)
		totalDeleted += deleted
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		p.logger.Info("pruned versions by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxVersions > 0 {
		deleted, err := p.store.PruneVersions(ctx, p.config.MaxVersions)
		totalDeleted += deleted
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		p.logger.Info("pruned versions by count",
			"deleted_count", deleted,
			"max_versions", p.config.MaxVersions,
		)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no versions pruned",
			"retention_days", p.config.RetentionDays,
			"max_versions", p.config.MaxVersions,
		)
	}
	return totalDeleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
