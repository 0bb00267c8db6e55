package middleware

import (
	"errors"
	"net/http"
	"strings"

	"workforce_backend/internal/models"
	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the authentication middleware.
const (
	IdentityKey = "identity"
	UserRoleKey = "userRole"

	// TokenCookie carries the access token for browser clients.
	TokenCookie = "token"
)

var errTokenMissing = errors.New("access token missing")

// AuthMiddleware authenticates web clients. The token is read from the
// Authorization header first and from the token cookie otherwise.
func AuthMiddleware() gin.HandlerFunc {
	return authenticate(true)
}

// MobileAuthMiddleware authenticates mobile clients from the Authorization header only.
func MobileAuthMiddleware() gin.HandlerFunc {
	return authenticate(false)
}

func authenticate(allowCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c, allowCookie)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authorized, token missing", err.Error()))
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.LogDebug("Rejected access token", map[string]interface{}{"error": err.Error(), "path": c.FullPath()})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		// Set account information in the context for downstream handlers
		c.Set(IdentityKey, models.Identity{ID: claims.ID, Type: claims.Type, Role: claims.Role})
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

func extractToken(c *gin.Context, allowCookie bool) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", errors.New("invalid authorization header format, use Bearer <token>")
		}
		return parts[1], nil
	}
	if allowCookie {
		if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", errTokenMissing
}

// IdentityFrom returns the authenticated caller stored by AuthMiddleware.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	raw, exists := c.Get(IdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := raw.(models.Identity)
	return identity, ok
}

// RoleAuthMiddleware creates a Gin middleware for role-based authorization.
// It checks if the account role (from JWT claims) is one of the allowed roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr := c.GetString(UserRoleKey)
		if roleStr == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", "role not found in token claims"))
			return
		}

		for _, r := range allowedRoles {
			if strings.EqualFold(roleStr, r) {
				c.Next()
				return
			}
		}

		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Access denied. Admins only.", "required roles: "+strings.Join(allowedRoles, ", ")))
	}
}

// AccountTypeMiddleware restricts a route to tokens issued for the given account type.
func AccountTypeMiddleware(accountType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", "identity not found in context"))
			return
		}
		if identity.Type != accountType {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Access denied for this account type.", "required account type: "+accountType))
			return
		}
		c.Next()
	}
}
