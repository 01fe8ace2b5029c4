package middleware

import (
	"net/http"
	"strings"

	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
)

// AdminIDKey is the gin context key holding the authenticated admin's ID.
const AdminIDKey = "admin_id"

// RequireAdmin rejects requests without a valid bearer token.
func RequireAdmin(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Next()
	}
}
