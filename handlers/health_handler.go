package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nyayasahaya-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	index  service.IndexStatus
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(index service.IndexStatus, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{index: index, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := service.CheckIndex(ctx, h.index); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		reason := "index unavailable"
		if errors.Is(err, service.ErrIndexEmpty) {
			reason = "index empty"
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": reason,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
