package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialysis-scheduler/internal/model"
)

// ListMachines handles GET /api/machines. The route is cached.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

type createMachineRequest struct {
	DisplayName          string `json:"displayName" binding:"required"`
	AvgProcessingMinutes int    `json:"avgProcessingMinutes" binding:"required,gt=0"`
}

// CreateMachine handles POST /api/machines. New machines start active.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DisplayName) == "" {
		respondBindError(c)
		return
	}

	m := &model.Machine{
		DisplayName:          strings.TrimSpace(req.DisplayName),
		Active:               true,
		AvgProcessingMinutes: req.AvgProcessingMinutes,
	}
	if err := h.store.CreateMachine(c.Request.Context(), m); err != nil {
		h.respondError(c, err)
		return
	}
	h.flushMachines()

	h.logger.Info("machine created", zap.Int64("machine_id", m.ID), zap.String("display_name", m.DisplayName))
	c.JSON(http.StatusCreated, m)
}

type setMachineActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetMachineActive handles PATCH /api/machines/:id. Existing slot bindings are not touched.
func (h *Handler) SetMachineActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req setMachineActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	m, err := h.store.SetMachineActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.flushMachines()

	h.logger.Info("machine active flag changed", zap.Int64("machine_id", id), zap.Bool("active", m.Active))
	c.JSON(http.StatusOK, m)
}

func (h *Handler) flushMachines() {
	if h.machineCache != nil {
		h.machineCache.Flush()
	}
}
