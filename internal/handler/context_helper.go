package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-cert-api/internal/middleware"
)

func principalFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return ""
	}
	principal, ok := value.(string)
	if !ok {
		return ""
	}
	return principal
}
