package booking

import (
	"context"

	"go.uber.org/zap"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/parse"
	"dialysis-scheduler/internal/store"
)

// InitResult reports a freshly materialized grid.
type InitResult struct {
	Created bool `json:"created"`
	Count   int  `json:"count"`
}

// Initializer materializes the slot grid for a date from the capacity pool.
type Initializer struct {
	store          store.Store
	slotsPerPeriod int
	logger         *zap.Logger
}

// NewInitializer creates an initializer that binds slotsPerPeriod machines per period.
func NewInitializer(s store.Store, slotsPerPeriod int, logger *zap.Logger) *Initializer {
	return &Initializer{store: s, slotsPerPeriod: slotsPerPeriod, logger: logger}
}

// InitializeSlots creates slotsPerPeriod rows for each period on date. Slot i of
// both periods is bound to the i-th active machine ordered by id. A date that
// already has rows fails with ErrAlreadyInitialized and is left untouched.
func (i *Initializer) InitializeSlots(ctx context.Context, rawDate string) (*InitResult, error) {
	date, err := parse.Date(rawDate)
	if err != nil {
		return nil, err
	}

	exists, err := i.store.HasSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrAlreadyInitialized
	}

	machines, err := i.store.ActiveMachines(ctx)
	if err != nil {
		return nil, err
	}
	if len(machines) < i.slotsPerPeriod {
		i.logger.Warn("not enough active machines to initialize slots",
			zap.String("date", date),
			zap.Int("active", len(machines)),
			zap.Int("required", i.slotsPerPeriod))
		return nil, apperr.ErrInsufficientCapacity
	}

	count, err := i.store.CreateSlotGrid(ctx, date, machines[:i.slotsPerPeriod])
	if err != nil {
		return nil, err
	}

	i.logger.Info("slot grid created", zap.String("date", date), zap.Int("count", count))
	return &InitResult{Created: true, Count: count}, nil
}
