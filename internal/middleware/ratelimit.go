package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerbook/internal/logger"
	"ledgerbook/internal/ratelimit"
)

// RateLimit rejects requests from owners that exhausted their budget. It
// must run after AuthMiddleware; unauthenticated requests pass through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetString(OwnerIDKey)
		if ownerID == "" || limiter.Allow(ownerID) {
			c.Next()
			return
		}
		logger.FromContext(c.Request.Context()).Warnw("rate limited", "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			gin.H{"error": gin.H{"code": "RATE_LIMITED", "message": "Too many requests, slow down"}})
	}
}
