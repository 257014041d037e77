package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		respond(c, apierrors.CodeServiceUnavailable, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Boardwalk is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
