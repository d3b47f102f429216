package middleware

import (
	"strings"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set("userID", claims.UserID)
		c.Set("userType", claims.UserType)

		c.Next()
	}
}

// UserTypeAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func UserTypeAuthMiddleware(allowedTypes ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("userType")
		if !exists {
			utils.InternalServerError(c, "User type not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		ut, ok := userType.(models.UserType)
		if !ok {
			utils.InternalServerError(c, "User type in context is not of expected type.")
			c.Abort()
			return
		}

		isAllowed := false
		for _, allowedType := range allowedTypes {
			if ut == allowedType {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user type from context
func GetUserTypeFromContext(c *gin.Context) (models.UserType, bool) {
	userType, exists := c.Get("userType")
	if !exists {
		return "", false
	}
	ut, ok := userType.(models.UserType)
	return ut, ok
}
