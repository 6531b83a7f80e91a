package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dialysis-scheduler/internal/model"
)

type putSubscriptionRequest struct {
	PatientID int64  `json:"patientId" binding:"required"`
	Endpoint  string `json:"endpoint" binding:"required"`
	P256DH    string `json:"p256dh" binding:"required"`
	Auth      string `json:"auth" binding:"required"`
}

// PutSubscription handles the creation or replacement of a patient's push subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	subscription := model.PushSubscription{
		Endpoint:  req.Endpoint,
		PatientID: req.PatientID,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
	}
	if err := h.store.SaveSubscription(c.Request.Context(), &subscription); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c)
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
