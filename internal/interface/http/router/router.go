// Package router 注册HTTP路由
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-api/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-api/internal/interface/http/middleware"
)

// New 创建并配置Gin引擎
//
// 中间件顺序：
//
//	RequestID → Tracing → Logger → Metrics → Recovery → handler
//
// Recovery放在最内层，panic转成500之后Logger和Metrics仍能记录到这次请求。
func New(cfg *config.Config, log *zap.Logger, authors *handler.AuthorHandler, books *handler.BookHandler) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logger(log),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.Recovery(log))

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	// 生产环境不暴露
	if cfg.Server.Mode == gin.DebugMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authorGroup := r.Group("/authors")
	{
		authorGroup.GET("", authors.List)
		authorGroup.GET("/:id", authors.Get)
		authorGroup.POST("", authors.Create)
		authorGroup.PUT("/:id", authors.Update)
		authorGroup.DELETE("/:id", authors.Delete)
	}

	bookGroup := r.Group("/books")
	{
		bookGroup.GET("", books.List)
		bookGroup.GET("/:id", books.Get)
		bookGroup.POST("", books.Create)
		bookGroup.PUT("/:id", books.Update)
		bookGroup.DELETE("/:id", books.Delete)
	}

	return r
}
