package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type markAttendanceRequest struct {
	PatientID int64  `json:"patientId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Time      string `json:"time"`
}

// MarkAttendance handles POST /api/attendance.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	row, err := h.attendance.MarkAttendance(c.Request.Context(), req.PatientID, req.Date, req.Status, req.Time)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// ListAttendance handles GET /api/attendance/:date.
func (h *Handler) ListAttendance(c *gin.Context) {
	rows, err := h.attendance.List(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type radarCheckInRequest struct {
	PatientID int64 `json:"patientId" binding:"required"`
}

// RadarCheckIn handles POST /api/attendance/radar, called by the check-in device.
func (h *Handler) RadarCheckIn(c *gin.Context) {
	var req radarCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	row, err := h.attendance.RadarCheckIn(c.Request.Context(), req.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
