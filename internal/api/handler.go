package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"dialysis-scheduler/internal/attendance"
	"dialysis-scheduler/internal/booking"
	"dialysis-scheduler/internal/reschedule"
	"dialysis-scheduler/internal/store"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Store       store.Store
	Initializer *booking.Initializer
	Bookings    *booking.Service
	Reschedules *reschedule.Service
	Attendance  *attendance.Service
	// MachineCache backs the cached machine listing. Machine writes flush it.
	MachineCache *cache.Cache
	WebPush      *webpush.Options
	Logger       *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	initializer  *booking.Initializer
	bookings     *booking.Service
	reschedules  *reschedule.Service
	attendance   *attendance.Service
	machineCache *cache.Cache
	webpush      *webpush.Options
	logger       *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:        d.Store,
		initializer:  d.Initializer,
		bookings:     d.Bookings,
		reschedules:  d.Reschedules,
		attendance:   d.Attendance,
		machineCache: d.MachineCache,
		webpush:      d.WebPush,
		logger:       logger,
	}
}
