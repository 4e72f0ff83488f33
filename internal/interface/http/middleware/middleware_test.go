package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xiebiao/relatorio/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	upstreamTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	upstreamSpanID  = "00f067aa0ba902b7"
	traceparent     = "00-" + upstreamTraceID + "-" + upstreamSpanID + "-01"
)

// setupTracing 安装内存SpanRecorder和TraceContext传播器，测试结束后恢复
func setupTracing(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

// captureLog 把全局Logger换成写入buffer的JSON Logger
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := *logger.L()
	buf := &bytes.Buffer{}
	logger.SetLogger(zerolog.New(buf))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return buf
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), Tracing())
	r.GET("/api/livros", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestTracing(t *testing.T) {
	t.Run("接上请求头中的traceparent", func(t *testing.T) {
		recorder := setupTracing(t)

		req := httptest.NewRequest(http.MethodGet, "/api/livros", nil)
		req.Header.Set("traceparent", traceparent)
		newEngine().ServeHTTP(httptest.NewRecorder(), req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, upstreamTraceID, spans[0].SpanContext().TraceID().String())
		assert.Equal(t, upstreamSpanID, spans[0].Parent().SpanID().String())
		assert.Equal(t, "GET /api/livros", spans[0].Name())
	})

	t.Run("没有traceparent时是新的根Span", func(t *testing.T) {
		recorder := setupTracing(t)

		newEngine().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/livros", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.False(t, spans[0].Parent().IsValid())
		assert.NotEqual(t, upstreamTraceID, spans[0].SpanContext().TraceID().String())
	})
}

func TestRequestLogger(t *testing.T) {
	t.Run("访问日志带request_id、trace_id和span_id", func(t *testing.T) {
		recorder := setupTracing(t)
		buf := captureLog(t)

		req := httptest.NewRequest(http.MethodGet, "/api/livros", nil)
		req.Header.Set("traceparent", traceparent)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		newEngine().ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "access", entry["message"])
		assert.Equal(t, "req-123", entry["request_id"])
		assert.Equal(t, upstreamTraceID, entry["trace_id"])

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, spans[0].SpanContext().SpanID().String(), entry["span_id"])
	})

	t.Run("没有请求ID时生成一个", func(t *testing.T) {
		captureLog(t)

		w := httptest.NewRecorder()
		newEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/livros", nil))

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}
