package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/xiebiao/relatorio/pkg/tracing"
)

const tracerName = "relatorio/http"

// Tracing 为每个请求开一个Span，应用层的Span挂在它下面
// 请求头带traceparent时接到上游的trace上，否则是新的根Span
// 未启用tracing时全局TracerProvider是no-op，开销可以忽略
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracing.StartSpan(ctx, tracerName,
			fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.target", c.Request.URL.Path),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
		var err error
		if c.Writer.Status() >= 500 {
			err = fmt.Errorf("HTTP %d", c.Writer.Status())
		}
		tracing.EndSpan(span, err)
	}
}
