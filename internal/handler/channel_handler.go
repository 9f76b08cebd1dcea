package handler

import (
	"errors"
	"net/http"
	"strings"

	"worldchat/internal/middleware"
	"worldchat/internal/models"
	"worldchat/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChannelHandler struct {
	channels *repository.ChannelRepository
	worlds   *repository.WorldRepository
}

func NewChannelHandler(channels *repository.ChannelRepository, worlds *repository.WorldRepository) *ChannelHandler {
	return &ChannelHandler{channels: channels, worlds: worlds}
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channels.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// Create adds a channel, optionally inside a world, with the caller as its first member.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required,max=128"`
		Description string  `json:"description" binding:"max=1024"`
		WorldID     *string `json:"world_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	ch := &models.Channel{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if req.WorldID != nil && *req.WorldID != "" {
		if _, err := h.worlds.GetByID(ctx, *req.WorldID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "world not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load world"})
			return
		}
		ch.WorldID = req.WorldID
	}
	if err := h.channels.Create(ctx, ch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create channel"})
		return
	}
	if err := h.channels.AddMember(ctx, ch.ID, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join channel"})
		return
	}
	c.JSON(http.StatusCreated, ch)
}
