package middleware

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/ratelimit"
)

// RateLimit 按用户限流，未认证的请求按客户端IP计数
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := GetUserID(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}
		if !limiter.Allow(key) {
			AbortWithError(c, apperrors.New(apperrors.ErrTooManyRequests))
			return
		}
		c.Next()
	}
}
