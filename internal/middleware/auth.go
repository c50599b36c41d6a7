package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/auth"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/config"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

// AuthMiddleware creates a middleware for JWT authentication. Beyond the
// signature check, the credential's session id must match the user's current
// session slot; a superseded session gets a distinguishable message so the
// client can show a "logged in elsewhere" banner.
func AuthMiddleware(cfg *config.Config, sessions *auth.Store) gin.HandlerFunc {
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

		user, err := sessions.Validate(c.Request.Context(), claims)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrSessionSuperseded):
				utils.Unauthorized(c, "Session invalidated elsewhere: you have signed in on another device")
			case errors.Is(err, auth.ErrSessionRevoked), errors.Is(err, auth.ErrSessionExpired):
				utils.Unauthorized(c, "Session is no longer valid, please sign in again")
			default:
				utils.InternalServerError(c, "Failed to validate session: "+err.Error())
			}
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set("userID", user.ID)
		c.Set("userRole", user.Role)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("userRole")
		if !exists {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		role, ok := userRole.(models.Role)
		if !ok {
			utils.InternalServerError(c, "User role in context is not of expected type.")
			c.Abort()
			return
		}

		isAllowed := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
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

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
