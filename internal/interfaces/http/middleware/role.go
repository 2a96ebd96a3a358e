package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// RequireRole allows the request through only when the authenticated caller has one of roles.
// It must run after JWTAuthMiddleware.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}
		if !slices.Contains(roles, principal.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient role for this operation", c.GetString(RequestIDKey)))
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole(identity.RoleAdmin)
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}
