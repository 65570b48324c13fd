package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleetcar/internal/auth"
	"fleetcar/internal/config"
	"fleetcar/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// RequireAuth validates the bearer token and stores the caller's identity
// on the context. Verification is stateless: no database lookup.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortError(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}

		claims, err := auth.Parse(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		userID, _ := strconv.ParseUint(claims.Subject, 10, 64)
		c.Set(CtxUserID, uint(userID))
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// RequireRole gates a route to the given roles; must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		roleVal, ok := c.Get(CtxRole)
		if !ok {
			abortError(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		role, _ := roleVal.(models.UserRole)
		if _, ok := roleSet[role]; !ok {
			abortError(c, http.StatusForbidden, "access denied")
			return
		}
		c.Next()
	}
}
