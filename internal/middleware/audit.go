package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saju-admin-api/internal/models"
)

// RequestOrigin stores the client address and user agent on the request
// context so audit rows written by services can name the caller's client.
func RequestOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := models.RequestOrigin{
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		c.Request = c.Request.WithContext(models.WithRequestOrigin(c.Request.Context(), origin))
		c.Next()
	}
}
