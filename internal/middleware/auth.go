package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"brewpos/internal/apierror"
	"brewpos/internal/service"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	CtxEmployeeID = "employee_id"
	CtxUsername   = "username"
	CtxRole       = "role"
)

// JWTAuth validates the Bearer token and stashes the claims on the context.
func JWTAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("missing bearer token"))
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}
		if claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("not an access token"))
			return
		}

		c.Set(CtxEmployeeID, claims.EmployeeID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the listed roles. Admin always passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	allowed["admin"] = true
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(CtxRole)] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient role"))
			return
		}
		c.Next()
	}
}
