package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/utils"
)

// TriggerAuth guards the run and cron endpoints with a shared bearer
// secret. An empty secret disables the check for local development.
func TriggerAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		logger.Warn("CRON_SECRET is empty, trigger endpoints are unauthenticated")
	}

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			utils.RespondWithUnauthorized(c, "invalid or missing trigger secret")
			c.Abort()
			return
		}

		c.Next()
	}
}
