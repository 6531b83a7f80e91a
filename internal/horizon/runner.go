// Package horizon keeps the slot grid materialized a fixed number of days ahead.
package horizon

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dialysis-scheduler/config"
	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/booking"
	"dialysis-scheduler/internal/clock"
)

// Initializer creates the grid for a single date.
type Initializer interface {
	InitializeSlots(ctx context.Context, date string) (*booking.InitResult, error)
}

// Clock is the subset of the civil clock the runner needs.
type Clock interface {
	Today() string
	UntilNextMidnight() time.Duration
}

// Runner pre-creates slots on a rolling horizon. On start it backfills
// today through +BackfillDays, then at every local midnight it initializes
// today +LookaheadDays.
type Runner struct {
	cfg         config.HorizonConfig
	initializer Initializer
	clock       Clock
	logger      *zap.Logger
}

// NewRunner creates a horizon runner.
func NewRunner(cfg config.HorizonConfig, initializer Initializer, c Clock, logger *zap.Logger) *Runner {
	return &Runner{cfg: cfg, initializer: initializer, clock: c, logger: logger}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if !r.cfg.Enabled {
		r.logger.Info("horizon runner is disabled, not starting")
		return
	}
	r.logger.Info("starting horizon runner",
		zap.Int("lookahead_days", r.cfg.LookaheadDays),
		zap.Int("backfill_days", r.cfg.BackfillDays))

	r.Backfill(ctx)

	timer := time.NewTimer(r.clock.UntilNextMidnight())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("horizon runner shutting down")
			return
		case <-timer.C:
			r.Rollover(ctx)
			timer.Reset(r.clock.UntilNextMidnight())
		}
	}
}

// Backfill initializes every date from today through today+BackfillDays that
// has no rows yet. It returns the dates it created.
func (r *Runner) Backfill(ctx context.Context) []string {
	today := r.clock.Today()
	var created []string
	for i := 0; i <= r.cfg.BackfillDays; i++ {
		date, err := clock.AddDays(today, i)
		if err != nil {
			r.logger.Error("failed to compute backfill date", zap.Error(err))
			return created
		}
		if r.ensure(ctx, date) {
			created = append(created, date)
		}
	}
	r.logger.Info("horizon backfill finished", zap.String("today", today), zap.Strings("created", created))
	return created
}

// Rollover initializes the date LookaheadDays after today.
func (r *Runner) Rollover(ctx context.Context) bool {
	date, err := clock.AddDays(r.clock.Today(), r.cfg.LookaheadDays)
	if err != nil {
		r.logger.Error("failed to compute rollover date", zap.Error(err))
		return false
	}
	return r.ensure(ctx, date)
}

func (r *Runner) ensure(ctx context.Context, date string) bool {
	res, err := r.initializer.InitializeSlots(ctx, date)
	switch {
	case err == nil:
		r.logger.Info("horizon initialized date", zap.String("date", date), zap.Int("count", res.Count))
		return true
	case errors.Is(err, apperr.ErrAlreadyInitialized):
		return false
	default:
		r.logger.Error("horizon failed to initialize date", zap.String("date", date), zap.Error(err))
		return false
	}
}
