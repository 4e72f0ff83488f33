package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder 安装一个内存SpanRecorder作为全局Provider
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prev := otel.GetTracerProvider()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return recorder
}

// TestInitTracer 测试Tracer初始化（Collector不存在时也能成功创建）
func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	shutdown, err := InitTracer("test-service", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	// 没有导出任何Span，关闭时不需要连接Collector
	_ = shutdown(context.Background())
}

// TestStartSpan 测试父子Span
func TestStartSpan(t *testing.T) {
	recorder := useRecorder(t)

	ctx, root := StartSpan(context.Background(), "test", "Root")
	_, child := StartSpan(ctx, "test", "Child")
	child.End()
	root.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("期望2个Span，实际%d个", len(spans))
	}
	if spans[0].Parent().SpanID() != root.SpanContext().SpanID() {
		t.Error("子Span的父Span不正确")
	}
	if spans[0].SpanContext().TraceID() != spans[1].SpanContext().TraceID() {
		t.Error("父子Span的TraceID应该一致")
	}
}

// TestEndSpan 测试错误状态记录
func TestEndSpan(t *testing.T) {
	recorder := useRecorder(t)

	_, ok := StartSpan(context.Background(), "test", "Ok")
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "test", "Failed")
	EndSpan(failed, errors.New("falha"))

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("期望2个Span，实际%d个", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Errorf("成功Span状态错误: %v", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("失败Span状态错误: %v", spans[1].Status().Code)
	}
	if len(spans[1].Events()) == 0 {
		t.Error("失败Span应该记录错误事件")
	}
}

// TestExtractIDs 测试TraceID/SpanID提取
func TestExtractIDs(t *testing.T) {
	useRecorder(t)

	t.Run("有效Context", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test", "Extract")
		defer span.End()

		if got := ExtractTraceID(ctx); len(got) != 32 {
			t.Errorf("TraceID长度错误: %q", got)
		}
		if got := ExtractSpanID(ctx); len(got) != 16 {
			t.Errorf("SpanID长度错误: %q", got)
		}
	})

	t.Run("无Span的Context", func(t *testing.T) {
		if got := ExtractTraceID(context.Background()); got != "" {
			t.Errorf("期望空字符串，实际: %s", got)
		}
		if got := ExtractSpanID(context.Background()); got != "" {
			t.Errorf("期望空字符串，实际: %s", got)
		}
	})
}
