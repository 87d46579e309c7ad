// Package metrics 提供基于Prometheus的指标收集
//
// # 指标清单
//
// HTTP层（middleware.Metrics记录）：
//   - http_requests_total{method,path,status}        Counter
//   - http_request_duration_seconds{method,path}     Histogram
//   - http_requests_in_progress                      Gauge
//
// 仓储层（guard.WithTelemetry记录）：
//   - repository_operations_total{entity,op,result}  Counter，result=ok|not_found|conflict|error
//   - repository_operation_duration_seconds{entity,op} Histogram
//
// 熔断器（guard.WithBreaker记录）：
//   - circuit_breaker_state{name}                    Gauge，0=CLOSED 1=OPEN 2=HALF_OPEN
//   - circuit_breaker_requests_total{name,result}    Counter，result=success|failure|rejected
//
// # 使用示例
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// # 命名规范
//
//  1. Counter以`_total`结尾
//  2. Histogram以单位结尾（`_seconds`）
//  3. 标签只用有限取值的维度：path使用路由模板（/authors/:id），不使用实际URL
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 仓储指标

	// RepositoryOperationsTotal 仓储操作总数
	RepositoryOperationsTotal *prometheus.CounterVec

	// RepositoryOperationDuration 仓储操作耗时
	RepositoryOperationDuration *prometheus.HistogramVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	CircuitBreakerRequests *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标并注册到默认Registry
// 可重复调用，只有第一次生效（promauto重复注册会panic）
func InitMetrics() {
	initOnce.Do(func() {
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
				// 1ms、10ms、100ms、500ms、1s、5s、10s
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

		RepositoryOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repository_operations_total",
				Help: "仓储操作总数",
			},
			[]string{"entity", "op", "result"},
		)

		RepositoryOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "repository_operation_duration_seconds",
				Help: "仓储操作耗时（秒）",
				// 单表操作一般在毫秒级
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"entity", "op"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)
	})
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// ObserveRepositoryOperation 记录一次仓储操作
func ObserveRepositoryOperation(entity, op, result string, seconds float64) {
	InitMetrics()
	RepositoryOperationsTotal.WithLabelValues(entity, op, result).Inc()
	RepositoryOperationDuration.WithLabelValues(entity, op).Observe(seconds)
}

// ObserveBreaker 记录一次熔断器判定结果
func ObserveBreaker(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// SetBreakerState 更新熔断器状态
func SetBreakerState(name string, state float64) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}
