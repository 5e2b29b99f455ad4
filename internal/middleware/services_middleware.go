package middleware

import (
	"github.com/eventgate/backend/internal/services"
	"github.com/gin-gonic/gin"
)

func ServicesMiddleware(set *services.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("services", set)
		c.Next()
	}
}

func GetServices(c *gin.Context) *services.Set {
	set, exists := c.Get("services")
	if !exists {
		return nil
	}
	return set.(*services.Set)
}
