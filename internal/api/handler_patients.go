package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerPatientRequest struct {
	Name            string `json:"name" binding:"required"`
	Schedule        string `json:"schedule" binding:"required"`
	PreferredPeriod string `json:"preferredPeriod"`
}

// RegisterPatient handles POST /api/patients.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req registerPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	p, err := h.bookings.RegisterPatient(c.Request.Context(), req.Name, req.Schedule, req.PreferredPeriod)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetNextDate handles GET /api/patients/:id/next-date?from=YYYY-MM-DD.
func (h *Handler) GetNextDate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	date, err := h.bookings.NextEligibleDate(c.Request.Context(), id, c.Query("from"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patientId": id, "date": date})
}
