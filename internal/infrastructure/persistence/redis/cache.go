package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// CachedRepository 旁路缓存（Cache-Aside）仓储装饰器
//
// 读：FindByID先查Redis，未命中再查下层仓储并回填
// 写：Save/DeleteByID成功后删除对应key，下一次读取时重新加载
//
// 延迟双删：读请求可能在写之前查到旧值、在删除之后才回填，
// 所以删除后再延迟evictDelay删一次。删除不跟随请求ctx，客户端断开也会执行。
//
// Key设计：{entity}:detail:{id}，如author:detail:42
//
// Redis只是加速手段，它的任何故障（超时、连接断开、数据损坏）都只记录日志，
// 调用结果以下层仓储为准。
type CachedRepository[T any, P crud.Record[T]] struct {
	next       crud.Repository[T]
	client     redis.Cmdable
	entity     string
	ttl        time.Duration
	evictDelay time.Duration
	log        *zap.Logger
}

// defaultEvictDelay 第二次删除的延迟，需要覆盖一次回源查询的耗时
const defaultEvictDelay = 500 * time.Millisecond

// NewCachedRepository 为仓储加上Redis缓存
func NewCachedRepository[T any, P crud.Record[T]](next crud.Repository[T], client redis.Cmdable, entity string, ttl time.Duration, log *zap.Logger) *CachedRepository[T, P] {
	return &CachedRepository[T, P]{
		next:       next,
		client:     client,
		entity:     entity,
		ttl:        ttl,
		evictDelay: defaultEvictDelay,
		log:        log.With(zap.String("entity", entity)),
	}
}

// DetailKey 详情缓存key
func DetailKey(entity string, id uint) string {
	return fmt.Sprintf("%s:detail:%d", entity, id)
}

// FindAll 列表不缓存
func (r *CachedRepository[T, P]) FindAll(ctx context.Context) ([]*T, error) {
	return r.next.FindAll(ctx)
}

// FindByID 先查缓存，未命中查下层并回填
func (r *CachedRepository[T, P]) FindByID(ctx context.Context, id uint) (*T, error) {
	key := DetailKey(r.entity, id)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rec T
		jsonErr := json.Unmarshal(data, &rec)
		if jsonErr == nil {
			return &rec, nil
		}
		r.log.Warn("缓存数据损坏，回源查询", zap.String("key", key), zap.Error(jsonErr))
	case errors.Is(err, redis.Nil):
		// 未命中
	case apperrors.IsContextDone(err):
		return nil, apperrors.Canceled(err, "请求已取消")
	default:
		r.log.Warn("读取缓存失败，回源查询", zap.String("key", key), zap.Error(err))
	}

	rec, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, key, rec)
	return rec, nil
}

// Save 写入下层后删除缓存
func (r *CachedRepository[T, P]) Save(ctx context.Context, record *T) (*T, error) {
	saved, err := r.next.Save(ctx, record)
	if err != nil {
		return nil, err
	}

	// 新插入的记录不会有缓存
	if record != nil && P(record).Identity() != 0 {
		r.evict(ctx, P(saved).Identity())
	}
	return saved, nil
}

// DeleteByID 删除下层记录后删除缓存
func (r *CachedRepository[T, P]) DeleteByID(ctx context.Context, id uint) error {
	if err := r.next.DeleteByID(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, id)
	return nil
}

func (r *CachedRepository[T, P]) fill(ctx context.Context, key string, rec *T) {
	data, err := json.Marshal(rec)
	if err != nil {
		r.log.Warn("序列化缓存数据失败", zap.String("key", key), zap.Error(err))
		return
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedRepository[T, P]) evict(ctx context.Context, id uint) {
	key := DetailKey(r.entity, id)
	ctx = context.WithoutCancel(ctx)

	r.del(ctx, key)
	time.AfterFunc(r.evictDelay, func() {
		r.del(ctx, key)
	})
}

func (r *CachedRepository[T, P]) del(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		// key会在TTL到期后自然失效
		r.log.Error("删除缓存失败", zap.String("key", key), zap.Error(err))
	}
}
