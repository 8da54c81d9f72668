package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/universidad-api/internal/models"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
	"github.com/noah-isme/universidad-api/pkg/response"
)

// RequireRoles only lets through users holding one of roles. It must run after JWT.
func RequireRoles(roles ...models.Rol) gin.HandlerFunc {
	allowed := make(map[models.Rol]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Rol]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
