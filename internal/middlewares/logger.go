package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/Gopher0727/GuildForge/middleware/log"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger 为每个请求分配 trace id（优先使用 X-Request-ID），写入请求上下文并记录访问日志
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(RequestIDHeader)
		if traceID == "" {
			traceID = logger.NewTraceID()
		}
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header(RequestIDHeader, traceID)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch {
		case c.Writer.Status() >= 500:
			log.ErrorContext(ctx, "request completed", fields...)
		case c.Writer.Status() >= 400:
			log.WarnContext(ctx, "request completed", fields...)
		default:
			log.InfoContext(ctx, "request completed", fields...)
		}
	}
}
