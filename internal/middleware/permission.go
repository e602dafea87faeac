package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakeshop/internal/domain"
)

// Require rejects callers whose role does not hold the given capability.
// It must run after Authenticated.
func Require(p domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole) // Set by Authenticated
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if r, ok := role.(domain.Role); !ok || !r.Can(p) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
