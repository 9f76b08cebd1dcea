package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionCounter reports the number of live gateway connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

type PresenceHandler struct {
	online OnlineChecker
	conns  ConnectionCounter
}

func NewPresenceHandler(online OnlineChecker, conns ConnectionCounter) *PresenceHandler {
	return &PresenceHandler{online: online, conns: conns}
}

// GetPresence reports whether a user currently holds a gateway connection.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	userID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "online": h.online.Online(userID)})
}

func (h *PresenceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": h.conns.ConnectionCount()})
}
