package guard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	"github.com/xiebiao/bookstore-api/internal/domain/crud/crudtest"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookstore-api/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
	"github.com/xiebiao/bookstore-api/pkg/metrics"
)

// flakyRepository 可切换为故障状态的仓储
type flakyRepository struct {
	author.Repository
	down  bool
	calls int
}

func (r *flakyRepository) FindByID(ctx context.Context, id uint) (*author.Author, error) {
	r.calls++
	if r.down {
		return nil, apperrors.Unavailable(errors.New("dial tcp: connection refused"), "查询作者失败")
	}
	return r.Repository.FindByID(ctx, id)
}

func newTestBreaker(name string) *circuitbreaker.CircuitBreaker {
	return NewBreaker(name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Hour, // 测试期间不会自动进入半开
	}, 3, zap.NewNop())
}

func TestWithBreaker_Contract(t *testing.T) {
	crudtest.Run(t, crudtest.Harness[book.Book]{
		New: func(t *testing.T) crud.Repository[book.Book] {
			return WithBreaker(memory.NewBookRepository(), newTestBreaker("contract-"+t.Name()))
		},
		Make: func(i int) *book.Book {
			return book.NewBook(fmt.Sprintf("书名-%d", i), "", "", 0)
		},
		Mutate: func(b *book.Book) { b.Title += "（第二版）" },
		ID:     func(b *book.Book) uint { return b.ID },
		SetID:  func(b *book.Book, id uint) { b.ID = id },
		Errors: book.Errors,
	})
}

func TestWithBreaker_OpensOnStoreFailures(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyRepository{Repository: memory.NewAuthorRepository(), down: true}
	cb := newTestBreaker("author-open")
	repo := WithBreaker[author.Author](flaky, cb)

	for i := 0; i < 3; i++ {
		_, err := repo.FindByID(ctx, 1)
		assert.True(t, apperrors.IsStoreUnavailable(err))
	}
	require.Equal(t, circuitbreaker.StateOpen, cb.State())
	assert.Equal(t, float64(circuitbreaker.StateOpen), testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("author-open")))

	// 熔断后不再访问下层
	flaky.down = false
	_, err := repo.FindByID(ctx, 1)
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("author-open", "rejected")))
}

func TestWithBreaker_NotFoundDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	cb := newTestBreaker("author-notfound")
	repo := WithBreaker(memory.NewAuthorRepository(), cb)

	for i := 0; i < 10; i++ {
		_, err := repo.FindByID(ctx, 404)
		assert.ErrorIs(t, err, author.ErrAuthorNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
}

func TestWithBreaker_CanceledDoesNotTrip(t *testing.T) {
	flaky := &flakyRepository{Repository: memory.NewAuthorRepository(), down: true}
	cb := newTestBreaker("author-canceled")
	repo := WithBreaker[author.Author](flaky, cb)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	// 两次存储故障后夹杂大量取消，取消既不累积失败也不清零连续失败
	for i := 0; i < 2; i++ {
		_, err := repo.FindByID(context.Background(), 1)
		require.True(t, apperrors.IsStoreUnavailable(err))
	}
	flaky.down = false
	for i := 0; i < 10; i++ {
		_, err := repo.FindByID(canceled, 1)
		assert.True(t, apperrors.IsCanceled(err), "应为取消错误: %v", err)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	assert.Equal(t, uint32(2), cb.Counts().ConsecutiveFailures)
	assert.Equal(t, float64(10), testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("author-canceled", "canceled")))

	flaky.down = true
	_, err := repo.FindByID(context.Background(), 1)
	require.True(t, apperrors.IsStoreUnavailable(err))
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())
}

// setupSpanRecorder 安装内存Span记录器
func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestWithTelemetry_SpansAndMetrics(t *testing.T) {
	ctx := context.Background()
	recorder := setupSpanRecorder(t)
	repo := WithTelemetry(memory.NewAuthorRepository(), "author_telemetry")

	okCounter := metrics.RepositoryOperationsTotal.WithLabelValues("author_telemetry", opSave, "ok")
	notFoundCounter := metrics.RepositoryOperationsTotal.WithLabelValues("author_telemetry", opFindByID, "not_found")

	saved, err := repo.Save(ctx, author.NewAuthor("Tolkien", ""))
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, saved.ID+100)
	require.ErrorIs(t, err, author.ErrAuthorNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(okCounter))
	assert.Equal(t, float64(1), testutil.ToFloat64(notFoundCounter))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "author_telemetry.save", spans[0].Name())
	assert.Equal(t, "author_telemetry.find_by_id", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code, "NotFound不应标记为错误")
}

func TestWithTelemetry_StoreErrorMarksSpan(t *testing.T) {
	ctx := context.Background()
	recorder := setupSpanRecorder(t)
	flaky := &flakyRepository{Repository: memory.NewAuthorRepository(), down: true}
	repo := WithTelemetry[author.Author](flaky, "author_flaky")

	_, err := repo.FindByID(ctx, 1)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.RepositoryOperationsTotal.WithLabelValues("author_flaky", opFindByID, "error")))
}

func TestWithTelemetry_LargeIDAttribute(t *testing.T) {
	recorder := setupSpanRecorder(t)
	repo := WithTelemetry(memory.NewBookRepository(), "book_large_id")

	maxID := ^uint(0)
	_, err := repo.FindByID(context.Background(), maxID)
	require.ErrorIs(t, err, book.ErrBookNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	var got string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "id" {
			got = kv.Value.Emit()
		}
	}
	assert.Equal(t, strconv.FormatUint(uint64(maxID), 10), got)
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, "ok", resultOf(nil))
	assert.Equal(t, "canceled", resultOf(apperrors.Canceled(context.Canceled, "查询作者失败")))
	assert.Equal(t, "canceled", resultOf(context.DeadlineExceeded))
	assert.Equal(t, "not_found", resultOf(book.ErrBookNotFound))
	assert.Equal(t, "conflict", resultOf(book.ErrBookConflict))
	assert.Equal(t, "error", resultOf(apperrors.Unavailable(errors.New("x"), "y")))
}
