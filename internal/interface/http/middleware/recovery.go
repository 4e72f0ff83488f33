package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/logger"
	"github.com/xiebiao/relatorio/pkg/response"
)

// Recovery panic恢复中间件
// panic记录到请求日志(含堆栈)，响应写出前才返回500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromContext(c.Request.Context()).Error().
					Interface("panic", r).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				if !c.Writer.Written() {
					response.ErrorWithStatus(c, http.StatusInternalServerError, apperrors.ErrInternal.Message)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
