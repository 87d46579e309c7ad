// Package crudtest 提供crud.Repository实现的通用契约测试
//
// 各存储实现（memory、rdb、redis装饰器、guard装饰器）在自己的_test.go里调用Run，
// 保证对外行为一致：
//
//	crudtest.Run(t, crudtest.Harness[author.Author]{
//	    New:    func(t *testing.T) crud.Repository[author.Author] { return memory.NewAuthorRepository() },
//	    Make:   func(i int) *author.Author { return author.NewAuthor(fmt.Sprintf("a-%d", i), "") },
//	    Mutate: func(a *author.Author) { a.Name += " (修订)" },
//	    ID:     func(a *author.Author) uint { return a.ID },
//	    SetID:  func(a *author.Author, id uint) { a.ID = id },
//	    Errors: author.Errors,
//	})
package crudtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// Harness 契约测试所需的实体操作
type Harness[T any] struct {
	// New 每个子测试创建一个空仓储
	New func(t *testing.T) crud.Repository[T]
	// Make 构造第i个新记录（ID为0）
	Make func(i int) *T
	// Mutate 修改记录的可变字段
	Mutate func(rec *T)
	ID     func(rec *T) uint
	SetID  func(rec *T, id uint)
	Errors crud.Errors

	// Parallel 并发插入的协程数，默认32
	Parallel int
}

// Run 执行全部契约测试
func Run[T any](t *testing.T, h Harness[T]) {
	t.Helper()
	if h.Parallel == 0 {
		h.Parallel = 32
	}
	ctx := context.Background()

	t.Run("空库FindAll返回空切片", func(t *testing.T) {
		repo := h.New(t)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("插入分配新ID且可查询", func(t *testing.T) {
		repo := h.New(t)

		input := h.Make(1)
		saved, err := repo.Save(ctx, input)
		require.NoError(t, err)
		require.NotZero(t, h.ID(saved))
		assert.Zero(t, h.ID(input), "入参不应被修改")

		found, err := repo.FindByID(ctx, h.ID(saved))
		require.NoError(t, err)
		assert.Equal(t, h.ID(saved), h.ID(found))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ID互不相同", func(t *testing.T) {
		repo := h.New(t)

		seen := make(map[uint]bool)
		for i := 0; i < 5; i++ {
			saved, err := repo.Save(ctx, h.Make(i))
			require.NoError(t, err)
			assert.False(t, seen[h.ID(saved)], "ID重复: %d", h.ID(saved))
			seen[h.ID(saved)] = true
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("不存在的ID返回NotFound", func(t *testing.T) {
		repo := h.New(t)

		_, err := repo.FindByID(ctx, 424242)
		assert.ErrorIs(t, err, h.Errors.NotFound)

		_, err = repo.FindByID(ctx, 0)
		assert.ErrorIs(t, err, h.Errors.NotFound)
	})

	t.Run("带ID保存整体覆盖", func(t *testing.T) {
		repo := h.New(t)

		saved, err := repo.Save(ctx, h.Make(1))
		require.NoError(t, err)

		update := h.Make(2)
		h.SetID(update, h.ID(saved))
		h.Mutate(update)

		updated, err := repo.Save(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, h.ID(saved), h.ID(updated))

		found, err := repo.FindByID(ctx, h.ID(saved))
		require.NoError(t, err)
		h.SetID(update, h.ID(found))
		assertSameFields(t, update, found)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1, "更新不应新增记录")
	})

	t.Run("带未知ID保存返回NotFound", func(t *testing.T) {
		repo := h.New(t)

		rec := h.Make(1)
		h.SetID(rec, 777)
		_, err := repo.Save(ctx, rec)
		assert.ErrorIs(t, err, h.Errors.NotFound)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("保存nil返回参数错误", func(t *testing.T) {
		repo := h.New(t)

		_, err := repo.Save(ctx, nil)
		assert.ErrorIs(t, err, crud.ErrNilRecord)
	})

	t.Run("删除后不可查询", func(t *testing.T) {
		repo := h.New(t)

		saved, err := repo.Save(ctx, h.Make(1))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, h.ID(saved)))

		_, err = repo.FindByID(ctx, h.ID(saved))
		assert.ErrorIs(t, err, h.Errors.NotFound)

		// 再次删除
		assert.ErrorIs(t, repo.DeleteByID(ctx, h.ID(saved)), h.Errors.NotFound)
	})

	t.Run("删除只影响目标记录", func(t *testing.T) {
		repo := h.New(t)

		first, err := repo.Save(ctx, h.Make(1))
		require.NoError(t, err)
		second, err := repo.Save(ctx, h.Make(2))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, h.ID(first)))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, h.ID(second), h.ID(all[0]))
	})

	t.Run("返回副本", func(t *testing.T) {
		repo := h.New(t)

		saved, err := repo.Save(ctx, h.Make(1))
		require.NoError(t, err)

		h.Mutate(saved)

		found, err := repo.FindByID(ctx, h.ID(saved))
		require.NoError(t, err)
		original := h.Make(1)
		h.SetID(original, h.ID(found))
		assertSameFields(t, original, found)
	})

	t.Run("ctx已取消时返回取消错误而不是存储故障", func(t *testing.T) {
		repo := h.New(t)

		saved, err := repo.Save(ctx, h.Make(1))
		require.NoError(t, err)
		id := h.ID(saved)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		assertCanceled := func(t *testing.T, err error) {
			t.Helper()
			require.Error(t, err)
			assert.True(t, apperrors.IsCanceled(err), "应为取消错误: %v", err)
			assert.False(t, apperrors.IsStoreUnavailable(err), "取消不是存储故障: %v", err)
		}

		_, err = repo.FindAll(canceled)
		assertCanceled(t, err)

		_, err = repo.FindByID(canceled, id)
		assertCanceled(t, err)

		_, err = repo.Save(canceled, h.Make(2))
		assertCanceled(t, err)

		update := *saved
		h.Mutate(&update)
		_, err = repo.Save(canceled, &update)
		assertCanceled(t, err)

		assertCanceled(t, repo.DeleteByID(canceled, id))

		// 取消的调用没有产生任何修改
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assertSameFields(t, saved, all[0])
	})

	t.Run("并发插入ID不重复", func(t *testing.T) {
		repo := h.New(t)

		ids := make([]uint, h.Parallel)
		errs := make([]error, h.Parallel)

		var wg sync.WaitGroup
		for i := 0; i < h.Parallel; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				saved, err := repo.Save(ctx, h.Make(i))
				errs[i] = err
				if err == nil {
					ids[i] = h.ID(saved)
				}
			}(i)
		}
		wg.Wait()

		seen := make(map[uint]bool, h.Parallel)
		for i := range ids {
			require.NoError(t, errs[i])
			require.NotZero(t, ids[i])
			assert.False(t, seen[ids[i]], "ID重复: %d", ids[i])
			seen[ids[i]] = true
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, h.Parallel)
	})
}

// assertSameFields 比较除时间戳以外的字段
func assertSameFields[T any](t *testing.T, want, got *T) {
	t.Helper()

	var zero time.Time
	w, g := *want, *got
	if ts, ok := any(&w).(crud.Timestamped); ok {
		ts.Stamp(zero, zero)
	}
	if ts, ok := any(&g).(crud.Timestamped); ok {
		ts.Stamp(zero, zero)
	}
	assert.Equal(t, w, g)
}
