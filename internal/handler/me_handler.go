package handler

import (
	"errors"
	"net/http"

	"worldchat/internal/middleware"
	"worldchat/internal/models"
	"worldchat/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OnlineChecker reports live connection state; *presence.Tracker implements it.
type OnlineChecker interface {
	Online(userID string) bool
	OnlineCount(userIDs []string) int
}

type userView struct {
	*models.User
	Online bool `json:"online"`
}

type MeHandler struct {
	users  *repository.UserRepository
	online OnlineChecker
}

func NewMeHandler(users *repository.UserRepository, online OnlineChecker) *MeHandler {
	return &MeHandler{users: users, online: online}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, userView{User: u, Online: h.online.Online(u.ID)})
}
