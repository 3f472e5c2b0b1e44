package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/api/internal/models"
)

// RequireRoles passes only identities whose role is in the allowed set.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		if _, ok := roleSet[models.Role(claims.Role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient role"})
			return
		}

		c.Next()
	}
}
