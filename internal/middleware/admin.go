package middleware

import (
	"net/http"                // HTTP status codes
	"taskinn/internal/domain" // Role constants

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware requires the admin role issued by the admin login
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole) // Get role from context
		// Check if role exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "unauthenticated"})
			return
		}
		// Check if role is admin
		if role != domain.RoleAdmin {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required", "code": "admin_required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
