package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakeshop/internal/session"
)

// Context keys set by Authenticated
const (
	CtxUserID = "userID" // uint
	CtxRole   = "role"   // domain.Role
)

// Authenticated resolves the caller's identity from the session cookie and
// stores it in the request context. Requests without a live session are
// rejected before any handler runs.
func Authenticated(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(session.CookieName) // Read the session cookie
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		claims, err := sessions.Verify(c.Request.Context(), tokenStr) // Signature + server-side record
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set(CtxUserID, claims.UserID) // Opaque authenticated user id
		c.Set(CtxRole, claims.Role)     // Role resolved at login
		c.Next()
	}
}
