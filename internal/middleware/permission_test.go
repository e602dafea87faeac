package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bakeshop/internal/domain"
)

func permRequest(t *testing.T, role any, withRole bool, p domain.Permission) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", func(c *gin.Context) {
		if withRole {
			c.Set(CtxRole, role)
		}
		c.Next()
	}, Require(p), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequire(t *testing.T) {
	// Admin holds the management capabilities but cannot purchase.
	assert.Equal(t, http.StatusOK, permRequest(t, domain.RoleAdmin, true, domain.PermManageInventory))
	assert.Equal(t, http.StatusOK, permRequest(t, domain.RoleAdmin, true, domain.PermManageSeasons))
	assert.Equal(t, http.StatusOK, permRequest(t, domain.RoleAdmin, true, domain.PermViewAllSales))
	assert.Equal(t, http.StatusForbidden, permRequest(t, domain.RoleAdmin, true, domain.PermPurchase))

	// Customer can only purchase.
	assert.Equal(t, http.StatusOK, permRequest(t, domain.RoleCustomer, true, domain.PermPurchase))
	assert.Equal(t, http.StatusForbidden, permRequest(t, domain.RoleCustomer, true, domain.PermManageInventory))

	// No role in context at all.
	assert.Equal(t, http.StatusUnauthorized, permRequest(t, nil, false, domain.PermPurchase))

	// Wrong type stored under the role key.
	assert.Equal(t, http.StatusForbidden, permRequest(t, "admin", true, domain.PermManageInventory))
}
