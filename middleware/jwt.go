package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-reservations/utils"
)

const (
	CustomerIDKey = "customer_id"
	UsernameKey   = "username"
)

// JWTAuth rejects requests without a valid Bearer token and puts the
// caller's customer id and username on the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "missing bearer token")
			return
		}
		claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "invalid token")
			return
		}
		c.Set(CustomerIDKey, claims.ID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// CallerIdentity returns the authenticated username, or "anonymous".
func CallerIdentity(c *gin.Context) string {
	if u := c.GetString(UsernameKey); u != "" {
		return u
	}
	return "anonymous"
}
