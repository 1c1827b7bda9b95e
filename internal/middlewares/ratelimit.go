package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GuildForge/utils/ratelimit"
)

// RateLimitMiddleware 按客户端 IP 限流，limiter 为 nil 或规则关闭时直接放行
// Redis 出错时按 limiter 的 fail-open 设置处理，这里不再额外拒绝
func RateLimitMiddleware(limiter ratelimit.Limiter, scope string, rule ratelimit.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || rule.Disabled() {
			c.Next()
			return
		}

		key := scope + ":" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, rule)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too Many Requests - please wait before creating another server",
			})
			return
		}
		c.Next()
	}
}
