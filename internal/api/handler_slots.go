package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// InitializeSlots handles POST /api/slots/:date/initialize.
func (h *Handler) InitializeSlots(c *gin.Context) {
	res, err := h.initializer.InitializeSlots(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetSlots handles GET /api/slots/:date.
func (h *Handler) GetSlots(c *gin.Context) {
	grid, err := h.bookings.GetSlots(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

type bookSlotRequest struct {
	Date       string `json:"date" binding:"required"`
	Period     string `json:"period" binding:"required"`
	SlotNumber int    `json:"slotNumber" binding:"required"`
	PatientID  int64  `json:"patientId" binding:"required"`
}

// BookSlot handles POST /api/slots/book.
func (h *Handler) BookSlot(c *gin.Context) {
	var req bookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	slot, err := h.bookings.Book(c.Request.Context(), req.Date, req.Period, req.SlotNumber, req.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

type cancelSlotRequest struct {
	Date      string `json:"date" binding:"required"`
	PatientID int64  `json:"patientId" binding:"required"`
}

// CancelSlot handles POST /api/slots/cancel.
func (h *Handler) CancelSlot(c *gin.Context) {
	var req cancelSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	slot, err := h.bookings.Cancel(c.Request.Context(), req.Date, req.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// ToggleDisable handles PATCH /api/slots/:id/toggle-disable.
func (h *Handler) ToggleDisable(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	slot, err := h.bookings.ToggleDisable(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
