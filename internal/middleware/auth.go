package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkwell/api/internal/config"
	"inkwell/api/internal/security"
)

const claimsContextKey = "access_claims"

// Authenticate extracts the bearer token and verifies signature and expiry.
// No store lookup happens here: access tokens are stateless.
func Authenticate(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired access token"})
			return
		}

		c.Set(claimsContextKey, *claims)
		c.Next()
	}
}

// ClaimsFrom returns the identity attached by Authenticate.
func ClaimsFrom(c *gin.Context) (security.AccessClaims, bool) {
	val, exists := c.Get(claimsContextKey)
	if !exists {
		return security.AccessClaims{}, false
	}
	claims, ok := val.(security.AccessClaims)
	return claims, ok
}
