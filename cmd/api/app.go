package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookstore-api/internal/infrastructure/config"
)

// App 组装完成的应用
type App struct {
	cfg    *config.Config
	server *http.Server
	log    *zap.Logger
}

func newApp(cfg *config.Config, server *http.Server, log *zap.Logger) *App {
	return &App{cfg: cfg, server: server, log: log}
}

// Run 启动HTTP服务，ctx取消后优雅关闭
// 任一goroutine返回错误都会取消另一个
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("HTTP服务启动",
			zap.String("addr", a.server.Addr),
			zap.String("mode", a.cfg.Server.Mode),
			zap.String("driver", a.cfg.Database.Driver),
			zap.Bool("cache", a.cfg.Redis.Enabled),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("正在关闭HTTP服务", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("关闭HTTP服务失败: %w", err)
		}
		return nil
	})

	return g.Wait()
}
