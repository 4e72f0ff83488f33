// Package metrics 提供基于Prometheus的指标收集
//
// # 指标类型
//
// **1. Counter（计数器）**：只增不减的累计值
//   - 示例：HTTP请求总数、导入成功的CSV行数
//
// **2. Gauge（仪表盘）**：可增可减的瞬时值
//   - 示例：正在处理的请求数
//
// **3. Histogram（直方图）**：观测值的分布
//   - 示例：HTTP请求耗时、CSV导入耗时
//
// # 使用示例
//
//	// 1. 初始化Metrics
//	metrics.InitMetrics()
//
//	// 2. 暴露/metrics端点
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	// 3. 在业务代码中记录指标
//	metrics.ObserveBookOperation("delete", err, errors.IsNotFound(err))
//	metrics.IncCounterVec(metrics.CSVRowsTotal, map[string]string{"result": "failure"})
//
// # 命名规范
//
//   - Counter以`_total`结尾
//   - Histogram以单位结尾（`_seconds`）
//   - 避免高基数标签：不要用book_id作为标签
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// once 防止重复注册（promauto注册到全局Registry，重复注册会panic）
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（路由模板，如/api/livros/:id）、status（200/404）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 业务指标

	// BookOperationsTotal 图书操作总数（Counter）
	// 标签：operation（list/get/create/update/delete）、result（success/not_found/failure）
	BookOperationsTotal *prometheus.CounterVec

	// CSVRowsTotal CSV导入行数（Counter）
	// 标签：result（success/failure）
	CSVRowsTotal *prometheus.CounterVec

	// CSVImportDuration 单个CSV文件导入耗时（Histogram）
	CSVImportDuration prometheus.Histogram

	// 依赖健康

	// CircuitBreakerState 熔断器状态（Gauge），0=closed 1=open 2=half_open
	// 标签：name（熔断器名称）
	CircuitBreakerState *prometheus.GaugeVec
)

// InitMetrics 初始化所有Prometheus指标
// 程序启动时调用一次，重复调用无副作用
func InitMetrics() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		BookOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_operations_total",
				Help: "图书操作总数",
			},
			[]string{"operation", "result"},
		)

		CSVRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv_import_rows_total",
				Help: "CSV导入处理的行数",
			},
			[]string{"result"},
		)

		CSVImportDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "csv_import_duration_seconds",
				Help: "CSV文件导入耗时（秒）",
				// 整个文件在一个事务里，耗时随行数增长
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态：0=closed 1=open 2=half_open",
			},
			[]string{"name"},
		)
	})
}

// ObserveBookOperation 按结果记录一次图书操作
// notFound为true时记为not_found（不是故障）
func ObserveBookOperation(operation string, err error, notFound bool) {
	if BookOperationsTotal == nil {
		return
	}
	result := "success"
	switch {
	case notFound:
		result = "not_found"
	case err != nil:
		result = "failure"
	}
	BookOperationsTotal.With(prometheus.Labels{"operation": operation, "result": result}).Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}

// SetBreakerState 记录熔断器状态
func SetBreakerState(name string, state float64) {
	if CircuitBreakerState != nil {
		CircuitBreakerState.WithLabelValues(name).Set(state)
	}
}
