// README: Firebase ID token middleware and role guard for admin routes.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/infra"
)

const (
	ctxUID  = "auth.uid"
	ctxRole = "auth.role"

	RoleAdmin = "admin"
)

// Auth verifies "Authorization: Bearer <Firebase ID token>" and stores the
// caller uid and role claim on the gin context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, infra.ErrAuthDisabled) {
				msg = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(ctxUID, token.UID)
		c.Set(ctxRole, token.Role())
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
