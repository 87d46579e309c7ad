package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	// 重复初始化不会panic
	InitMetrics()

	require.NotNil(t, HTTPRequestsTotal, "HTTPRequestsTotal未初始化")
	require.NotNil(t, HTTPRequestDuration, "HTTPRequestDuration未初始化")
	require.NotNil(t, HTTPRequestsInProgress, "HTTPRequestsInProgress未初始化")
	require.NotNil(t, RepositoryOperationsTotal, "RepositoryOperationsTotal未初始化")
	require.NotNil(t, CircuitBreakerState, "CircuitBreakerState未初始化")
}

// TestCounterVec 同一组标签累加
func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"method": "GET", "path": "/metrics-test/:id", "status": "200"}
	before := testutil.ToFloat64(HTTPRequestsTotal.With(labels))

	IncCounterVec(HTTPRequestsTotal, labels)
	IncCounterVec(HTTPRequestsTotal, labels)
	IncCounterVec(HTTPRequestsTotal, map[string]string{"method": "POST", "path": "/metrics-test/:id", "status": "201"})

	assert.Equal(t, before+2, testutil.ToFloat64(HTTPRequestsTotal.With(labels)))
}

// TestGauge 测试Gauge递增递减
func TestGauge(t *testing.T) {
	InitMetrics()

	before := testutil.ToFloat64(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsInProgress))
	DecGauge(HTTPRequestsInProgress)
}

// TestObserveRepositoryOperation 计数与耗时同时记录
func TestObserveRepositoryOperation(t *testing.T) {
	InitMetrics()

	counter := RepositoryOperationsTotal.WithLabelValues("metrics_test", "find_by_id", "not_found")
	before := testutil.ToFloat64(counter)

	ObserveRepositoryOperation("metrics_test", "find_by_id", "not_found", 0.002)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(RepositoryOperationDuration), 1)
}

// TestBreakerMetrics 熔断器状态与判定结果
func TestBreakerMetrics(t *testing.T) {
	SetBreakerState("metrics_test", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("metrics_test")))

	ObserveBreaker("metrics_test", "rejected")
	ObserveBreaker("metrics_test", "rejected")
	assert.Equal(t, float64(2), testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("metrics_test", "rejected")))
}
