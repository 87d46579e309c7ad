package guard

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
	"github.com/xiebiao/bookstore-api/pkg/metrics"
	"github.com/xiebiao/bookstore-api/pkg/tracing"
)

const tracerName = "bookstore-api/repository"

// 操作名，用作Span名后缀和指标标签
const (
	opFindAll    = "find_all"
	opFindByID   = "find_by_id"
	opSave       = "save"
	opDeleteByID = "delete_by_id"
)

// telemetryRepository 记录Span与Prometheus指标的仓储
type telemetryRepository[T any] struct {
	next   crud.Repository[T]
	entity string
}

// WithTelemetry 为仓储加上追踪与指标
//   - Span：{entity}.{op}，如author.find_by_id
//   - 指标：repository_operations_total{entity,op,result}、repository_operation_duration_seconds{entity,op}
func WithTelemetry[T any](next crud.Repository[T], entity string) crud.Repository[T] {
	metrics.InitMetrics()
	return &telemetryRepository[T]{next: next, entity: entity}
}

func (r *telemetryRepository[T]) FindAll(ctx context.Context) ([]*T, error) {
	ctx, done := r.start(ctx, opFindAll)
	out, err := r.next.FindAll(ctx)
	done(err, attribute.Int("result.count", len(out)))
	return out, err
}

func (r *telemetryRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	ctx, done := r.start(ctx, opFindByID, idAttr(id))
	out, err := r.next.FindByID(ctx, id)
	done(err)
	return out, err
}

func (r *telemetryRepository[T]) Save(ctx context.Context, record *T) (*T, error) {
	ctx, done := r.start(ctx, opSave)
	out, err := r.next.Save(ctx, record)
	done(err)
	return out, err
}

func (r *telemetryRepository[T]) DeleteByID(ctx context.Context, id uint) error {
	ctx, done := r.start(ctx, opDeleteByID, idAttr(id))
	err := r.next.DeleteByID(ctx, id)
	done(err)
	return err
}

// start 开始一次操作，返回的done负责结束Span并记录指标
func (r *telemetryRepository[T]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(err error, extra ...attribute.KeyValue)) {
	begin := time.Now()

	attrs = append(attrs, attribute.String("entity", r.entity))
	ctx, span := tracing.StartSpan(ctx, tracerName, r.entity+"."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error, extra ...attribute.KeyValue) {
		result := resultOf(err)

		span.SetAttributes(extra...)
		span.SetAttributes(attribute.String("result", result))
		// NotFound/Conflict/取消都不是存储故障，不标记Span为错误
		if result == "error" {
			tracing.RecordError(span, err)
		}
		span.End()

		metrics.ObserveRepositoryOperation(r.entity, op, result, time.Since(begin).Seconds())
	}
}

// idAttr ID超过MaxInt64时Int64会变成负数，按字符串记录
func idAttr(id uint) attribute.KeyValue {
	return attribute.String("id", strconv.FormatUint(uint64(id), 10))
}

// resultOf 指标的result标签
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperrors.IsCanceled(err):
		return "canceled"
	case apperrors.IsNotFound(err):
		return "not_found"
	case apperrors.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}
