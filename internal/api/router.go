package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"dialysis-scheduler/config"
	"dialysis-scheduler/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.Logger(h.logger))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/slots/:date/initialize", h.InitializeSlots)
		api.GET("/slots/:date", h.GetSlots)
		api.POST("/slots/book", h.BookSlot)
		api.POST("/slots/cancel", h.CancelSlot)
		api.PATCH("/slots/:id/toggle-disable", h.ToggleDisable)

		machines := api.Group("/machines")
		if h.machineCache != nil {
			machines.GET("", mw.Cache(h.machineCache, time.Duration(cfg.CacheTTLSeconds)*time.Second), h.ListMachines)
		} else {
			machines.GET("", h.ListMachines)
		}
		machines.POST("", h.CreateMachine)
		machines.PATCH("/:id", h.SetMachineActive)

		api.POST("/patients", h.RegisterPatient)
		api.GET("/patients/:id/next-date", h.GetNextDate)
		api.GET("/patients/:id/reschedules", h.ListPatientReschedules)
		api.POST("/patients/:id/reschedules/seen", h.MarkReschedulesSeen)

		api.POST("/reschedules", h.SubmitReschedule)
		api.GET("/reschedules", h.ListReschedules)
		api.POST("/reschedules/:id/approve", h.ApproveReschedule)
		api.POST("/reschedules/:id/deny", h.DenyReschedule)

		api.POST("/attendance", h.MarkAttendance)
		api.GET("/attendance/:date", h.ListAttendance)
		api.POST("/attendance/radar", h.RadarCheckIn)

		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
