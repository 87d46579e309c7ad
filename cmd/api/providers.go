package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/guard"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-api/pkg/circuitbreaker"
)

// provideDB database.driver=memory时不连接数据库，返回nil
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Info("使用内存存储，数据在进程退出后丢失")
		return nil, func() {}, nil
	}
	return rdb.NewDB(cfg, log)
}

// provideRedis redis.enabled=false时不启用缓存，返回nil
func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	return redis.NewClient(cfg, log)
}

// provideAuthorRepository 存储 → 缓存 → 熔断 → 遥测
func provideAuthorRepository(cfg *config.Config, db *gorm.DB, client *goredis.Client, log *zap.Logger) author.Repository {
	var repo author.Repository
	if db != nil {
		repo = rdb.NewAuthorRepository(db)
	} else {
		repo = memory.NewAuthorRepository()
	}

	if client != nil {
		repo = redis.NewAuthorCache(repo, client, cfg.Redis.DetailTTL, log)
	}

	return decorate(cfg, log, redis.EntityAuthor, repo)
}

// provideBookRepository 同provideAuthorRepository
func provideBookRepository(cfg *config.Config, db *gorm.DB, client *goredis.Client, log *zap.Logger) book.Repository {
	var repo book.Repository
	if db != nil {
		repo = rdb.NewBookRepository(db)
	} else {
		repo = memory.NewBookRepository()
	}

	if client != nil {
		repo = redis.NewBookCache(repo, client, cfg.Redis.DetailTTL, log)
	}

	return decorate(cfg, log, redis.EntityBook, repo)
}

// decorate 按配置加上熔断，最外层总是遥测
func decorate[T any](cfg *config.Config, log *zap.Logger, entity string, repo crud.Repository[T]) crud.Repository[T] {
	if cfg.Breaker.Enabled {
		cb := guard.NewBreaker(entity+"-store", circuitbreaker.Config{
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
		}, cfg.Breaker.ConsecutiveFailures, log)
		repo = guard.WithBreaker(repo, cb)
	}
	return guard.WithTelemetry(repo, entity)
}

func provideHTTPServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
