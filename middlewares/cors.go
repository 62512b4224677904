package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const DefaultAllowedHeaders = "Content-Type, Authorization"

// CORSMiddlewares answers every origin with the given methods and headers.
// Preflight requests end here with 204 and no body.
func CORSMiddlewares(methods, headers string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", methods)
		c.Writer.Header().Set("Access-Control-Allow-Headers", headers)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
