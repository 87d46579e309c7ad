//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 依赖链：
//
//	*App ← *http.Server ← *gin.Engine ← Handler ← Service ← Repository ← *gorm.DB / *redis.Client
package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-api/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-api/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖：数据库连接、Redis连接（按配置可能为nil）
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
)

// repositorySet 仓储层依赖，已按配置装配好缓存、熔断与遥测
var repositorySet = wire.NewSet(
	provideAuthorRepository,
	provideBookRepository,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	author.NewService,
	book.NewService,
)

// handlerSet HTTP处理器、路由与服务
var handlerSet = wire.NewSet(
	handler.NewAuthorHandler,
	handler.NewBookHandler,
	router.New,
	provideHTTPServer,
)

// InitializeApp 初始化整个应用
// cfg和log由main提前构建（日志需要在注入失败时也可用）
// cleanup按创建的逆序关闭Redis、数据库连接
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		handlerSet,
		newApp,
	)
	return nil, nil, nil
}
