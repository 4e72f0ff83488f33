package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/relatorio/pkg/logger"
	"github.com/xiebiao/relatorio/pkg/tracing"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-Id"

// RequestLogger 请求日志中间件
// 设计说明：
// 1. 沿用客户端传来的X-Request-Id，没有则生成UUID
// 2. 把带request_id的Logger放进request context，下游用logger.FromContext取
// 3. 请求结束后记录一行访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		l := logger.L().With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		event := l.Info()
		if status >= 500 {
			event = l.Error()
		} else if status >= 400 {
			event = l.Warn()
		}
		ctx := c.Request.Context()
		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			event = event.Str("trace_id", traceID).Str("span_id", tracing.ExtractSpanID(ctx))
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("access")
	}
}
