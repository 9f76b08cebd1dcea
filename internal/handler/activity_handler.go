package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"worldchat/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	svc *service.ActivityService
	log *slog.Logger
}

func NewActivityHandler(svc *service.ActivityService, log *slog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, log: log}
}

// NotifyActivity sets the caller's active channel; omit channel_id or send "" to clear it.
func (h *ActivityHandler) NotifyActivity(c *gin.Context) {
	var req struct {
		ChannelID *string `json:"channel_id"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	err := h.svc.NotifyActivity(c.Request.Context(), req.ChannelID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
	default:
		h.log.Error("notify activity failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	}
}
