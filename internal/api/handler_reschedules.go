package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type submitRescheduleRequest struct {
	PatientID     int64  `json:"patientId" binding:"required"`
	RequestedDate string `json:"requestedDate" binding:"required"`
	OriginalDate  string `json:"originalDate" binding:"required"`
}

// SubmitReschedule handles POST /api/reschedules.
func (h *Handler) SubmitReschedule(c *gin.Context) {
	var req submitRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	created, err := h.reschedules.Submit(c.Request.Context(), req.PatientID, req.RequestedDate, req.OriginalDate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListReschedules handles GET /api/reschedules?status=.
func (h *Handler) ListReschedules(c *gin.Context) {
	reqs, err := h.reschedules.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// ListPatientReschedules handles GET /api/patients/:id/reschedules.
func (h *Handler) ListPatientReschedules(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	reqs, err := h.reschedules.ListForPatient(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// MarkReschedulesSeen handles POST /api/patients/:id/reschedules/seen.
func (h *Handler) MarkReschedulesSeen(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	n, err := h.reschedules.MarkSeen(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// ApproveReschedule handles POST /api/reschedules/:id/approve.
func (h *Handler) ApproveReschedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res, err := h.reschedules.Approve(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type denyRescheduleRequest struct {
	Reason string `json:"reason"`
}

// DenyReschedule handles POST /api/reschedules/:id/deny.
func (h *Handler) DenyReschedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req denyRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	res, err := h.reschedules.Deny(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
