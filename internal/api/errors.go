package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/mw"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInvalidState:      http.StatusUnprocessableEntity,
	apperr.KindCapacityExhausted: http.StatusConflict,
	apperr.KindValidation:        http.StatusBadRequest,
}

// respondError writes the JSON error body for err. Unclassified errors are
// logged and reported as a 500 without their message.
func (h *Handler) respondError(c *gin.Context, err error) {
	if status, ok := statusByKind[apperr.KindOf(err)]; ok {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": apperr.CodeOf(err)})
		return
	}

	_ = c.Error(err)
	h.logger.Error("request failed",
		zap.String("request_id", mw.GetRequestID(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal_error"})
}

func respondBindError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request", "code": "invalid_input"})
}

// idParam parses a positive int64 path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": "invalid_input"})
		return 0, false
	}
	return id, true
}
