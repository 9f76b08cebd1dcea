package middleware

import (
	"net/http"

	"worldchat/internal/auth"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticate resolves the caller's identity and attaches it to both the gin context and the
// request context. Requests without credentials pass through unauthenticated.
func Authenticate(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := resolver.Resolve(c.Request); ok {
			c.Set(identityKey, id)
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}

// AuthRequired rejects requests that Authenticate could not attach an identity to.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity set by Authenticate.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok && id.UserID != ""
}

// GetUserID returns the authenticated user ID, or "" (must be used after Authenticate).
func GetUserID(c *gin.Context) string {
	id, _ := GetIdentity(c)
	return id.UserID
}
