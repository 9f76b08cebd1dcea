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

type worldView struct {
	models.World
	MemberCount int `json:"member_count"`
	OnlineCount int `json:"online_count"`
}

type WorldHandler struct {
	worlds *repository.WorldRepository
	online OnlineChecker
}

func NewWorldHandler(worlds *repository.WorldRepository, online OnlineChecker) *WorldHandler {
	return &WorldHandler{worlds: worlds, online: online}
}

func (h *WorldHandler) view(w models.World) worldView {
	ids := make([]string, len(w.Members))
	for i, m := range w.Members {
		ids[i] = m.ID
	}
	return worldView{World: w, MemberCount: len(ids), OnlineCount: h.online.OnlineCount(ids)}
}

func (h *WorldHandler) List(c *gin.Context) {
	worlds, err := h.worlds.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list worlds"})
		return
	}
	out := make([]worldView, len(worlds))
	for i, w := range worlds {
		out[i] = h.view(w)
	}
	c.JSON(http.StatusOK, gin.H{"worlds": out})
}

func (h *WorldHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=128"`
		Description string `json:"description" binding:"max=2048"`
		Image       string `json:"image" binding:"omitempty,url,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w := &models.World{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Image:       req.Image,
		OwnerID:     middleware.GetUserID(c),
	}
	if err := h.worlds.Create(c.Request.Context(), w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create world"})
		return
	}
	created, err := h.worlds.GetByID(c.Request.Context(), w.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load world"})
		return
	}
	c.JSON(http.StatusCreated, h.view(*created))
}

func (h *WorldHandler) Join(c *gin.Context) {
	ctx := c.Request.Context()
	worldID := c.Param("id")
	if err := h.worlds.AddMember(ctx, worldID, middleware.GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "world not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join world"})
		return
	}
	w, err := h.worlds.GetByID(ctx, worldID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load world"})
		return
	}
	c.JSON(http.StatusOK, h.view(*w))
}
