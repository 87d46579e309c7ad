// Package guard 提供仓储装饰器：熔断保护与可观测性
//
// 装饰顺序（由内到外）：
//
//	存储(rdb/memory) → 缓存(redis，可选) → 熔断(WithBreaker，可选) → 遥测(WithTelemetry)
//
// 遥测在最外层，熔断拒绝的请求同样会被计数和追踪。
package guard

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	"github.com/xiebiao/bookstore-api/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
	"github.com/xiebiao/bookstore-api/pkg/metrics"
)

// breakerRepository 熔断保护的仓储
type breakerRepository[T any] struct {
	next crud.Repository[T]
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreaker 创建存储访问熔断器
// 只有存储故障类错误算失败，NotFound、Conflict等业务结果算成功，
// 调用方取消的请求不计入统计
func NewBreaker(name string, cfg circuitbreaker.Config, consecutiveFailures uint32, log *zap.Logger) *circuitbreaker.CircuitBreaker {
	cfg.ReadyToTrip = func(counts circuitbreaker.Counts) bool {
		return counts.ConsecutiveFailures >= consecutiveFailures
	}
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || !apperrors.IsStoreUnavailable(err)
	}
	cfg.IsExcluded = apperrors.IsCanceled
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.SetBreakerState(name, float64(to))
		log.Warn("熔断器状态变化",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	metrics.SetBreakerState(name, float64(circuitbreaker.StateClosed))
	return circuitbreaker.NewCircuitBreaker(name, cfg)
}

// WithBreaker 为仓储加上熔断保护
// 熔断打开期间直接返回存储不可用，不访问下层
func WithBreaker[T any](next crud.Repository[T], cb *circuitbreaker.CircuitBreaker) crud.Repository[T] {
	return &breakerRepository[T]{next: next, cb: cb}
}

func (r *breakerRepository[T]) FindAll(ctx context.Context) ([]*T, error) {
	var out []*T
	err := r.execute(func() (err error) {
		out, err = r.next.FindAll(ctx)
		return err
	})
	return out, err
}

func (r *breakerRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var out *T
	err := r.execute(func() (err error) {
		out, err = r.next.FindByID(ctx, id)
		return err
	})
	return out, err
}

func (r *breakerRepository[T]) Save(ctx context.Context, record *T) (*T, error) {
	var out *T
	err := r.execute(func() (err error) {
		out, err = r.next.Save(ctx, record)
		return err
	})
	return out, err
}

func (r *breakerRepository[T]) DeleteByID(ctx context.Context, id uint) error {
	return r.execute(func() error {
		return r.next.DeleteByID(ctx, id)
	})
}

func (r *breakerRepository[T]) execute(fn func() error) error {
	err := r.cb.Execute(fn)

	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.ObserveBreaker(r.cb.Name(), "rejected")
		return apperrors.Unavailable(err, "存储服务暂不可用，请稍后重试")
	case apperrors.IsCanceled(err):
		metrics.ObserveBreaker(r.cb.Name(), "canceled")
	case err != nil && apperrors.IsStoreUnavailable(err):
		metrics.ObserveBreaker(r.cb.Name(), "failure")
	default:
		metrics.ObserveBreaker(r.cb.Name(), "success")
	}

	return err
}
