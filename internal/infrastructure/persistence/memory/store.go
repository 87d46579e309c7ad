// Package memory 提供进程内的仓储实现
//
// 适用场景：
//   - database.driver=memory时作为主存储（本地开发、演示）
//   - handler层测试，不依赖外部数据库
//
// 数据不落盘，进程退出即丢失。
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// Store 基于map的泛型仓储
//
// 并发设计：
//  1. ID由atomic计数器分配，并发插入不会产生重复ID
//  2. map由RWMutex保护，读操作共享锁，写操作独占锁
//  3. 存入和返回的都是副本，调用方持有的指针与内部状态互不影响
type Store[T any, P crud.Record[T]] struct {
	mu      sync.RWMutex
	records map[uint]T
	nextID  atomic.Uint64
	errs    crud.Errors
	now     func() time.Time
}

// NewStore 创建内存仓储
func NewStore[T any, P crud.Record[T]](errs crud.Errors) *Store[T, P] {
	return &Store[T, P]{
		records: make(map[uint]T),
		errs:    errs,
		now:     time.Now,
	}
}

// FindAll 按ID升序返回全部记录
func (s *Store[T, P]) FindAll(ctx context.Context) ([]*T, error) {
	if err := apperrors.FromContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := lo.Keys(s.records)
	slices.SortFunc(ids, cmp.Compare[uint])
	out := lo.Map(ids, func(id uint, _ int) *T {
		rec := s.records[id]
		return &rec
	})
	s.mu.RUnlock()

	return out, nil
}

// FindByID 根据ID查询
func (s *Store[T, P]) FindByID(ctx context.Context, id uint) (*T, error) {
	if err := apperrors.FromContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, s.errs.NotFound
	}
	return &rec, nil
}

// Save 插入或整体覆盖
func (s *Store[T, P]) Save(ctx context.Context, record *T) (*T, error) {
	if record == nil {
		return nil, crud.ErrNilRecord
	}
	if err := apperrors.FromContext(ctx); err != nil {
		return nil, err
	}

	cp := *record
	p := P(&cp)
	now := s.now()

	if p.Identity() == 0 {
		p.AssignIdentity(uint(s.nextID.Add(1)))
		stamp(p, now, now)

		s.mu.Lock()
		s.records[p.Identity()] = cp
		s.mu.Unlock()

		out := cp
		return &out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[p.Identity()]
	if !ok {
		return nil, s.errs.NotFound
	}

	createdAt := now
	if ts, ok := any(P(&existing)).(crud.Timestamped); ok {
		createdAt = ts.CreatedTime()
	}
	stamp(p, createdAt, now)
	s.records[p.Identity()] = cp

	out := cp
	return &out, nil
}

// DeleteByID 删除记录，不存在返回NotFound
func (s *Store[T, P]) DeleteByID(ctx context.Context, id uint) error {
	if err := apperrors.FromContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return s.errs.NotFound
	}
	delete(s.records, id)
	return nil
}

// Len 当前记录数
func (s *Store[T, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// stamp 实体实现了crud.Timestamped时写入时间戳
func stamp(rec any, createdAt, updatedAt time.Time) {
	if ts, ok := rec.(crud.Timestamped); ok {
		ts.Stamp(createdAt, updatedAt)
	}
}
