package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oboteam/guarantor-backend/internal/errors"
	"github.com/oboteam/guarantor-backend/pkg/util"
)

// Context keys for user information
const (
	UserEmailKey       = "user_email"
	UserPermissionsKey = "user_permissions"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the bearer token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(UserEmailKey, claims.Subject)
		c.Set(UserPermissionsKey, claims.Permissions)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"email":       claims.Subject,
			"permissions": claims.Permissions,
		})

		c.Next()
	}
}

// RequireSuperuser rejects tokens without admin permissions
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		permissions, exists := GetUserPermissions(c)
		if !exists {
			log.Warn("Permission information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		if permissions != util.PermissionsAdmin {
			email, _ := GetUserEmail(c)
			log.Warn("Insufficient permissions", map[string]interface{}{
				"email":       email,
				"permissions": permissions,
				"path":        c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "Superuser access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserEmail extracts the authenticated email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetUserPermissions extracts the token's permission level from context
func GetUserPermissions(c *gin.Context) (string, bool) {
	permissions, exists := c.Get(UserPermissionsKey)
	if !exists {
		return "", false
	}
	return permissions.(string), true
}
