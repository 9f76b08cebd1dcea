package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"worldchat/config"
	"worldchat/internal/middleware"
	"worldchat/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	cfg *config.Config
	svc *service.AuthService
	log *slog.Logger
}

func NewAuthHandler(cfg *config.Config, svc *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, svc: svc, log: log}
}

// Logout ends the cookie session, if any. It always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	if id, ok := middleware.GetIdentity(c); ok && id.SessionID != "" {
		if err := h.svc.EndSession(c.Request.Context(), id.SessionID); err != nil {
			h.log.Warn("end session failed", "user_id", id.UserID, "error", err)
		}
	}
	setCookie(c, h.cfg, h.cfg.Session.CookieName, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Token issues a short-lived bearer token for the signed-in user.
func (h *AuthHandler) Token(c *gin.Context) {
	token, exp, err := h.svc.IssueAccessToken(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   exp,
	})
}
