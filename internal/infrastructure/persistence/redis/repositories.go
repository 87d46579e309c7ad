package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
)

// 缓存key中的实体名
const (
	EntityAuthor = "author"
	EntityBook   = "book"
)

// NewAuthorCache 作者仓储加缓存
func NewAuthorCache(next author.Repository, client redis.Cmdable, ttl time.Duration, log *zap.Logger) author.Repository {
	return NewCachedRepository[author.Author](next, client, EntityAuthor, ttl, log)
}

// NewBookCache 图书仓储加缓存
func NewBookCache(next book.Repository, client redis.Cmdable, ttl time.Duration, log *zap.Logger) book.Repository {
	return NewCachedRepository[book.Book](next, client, EntityBook, ttl, log)
}
