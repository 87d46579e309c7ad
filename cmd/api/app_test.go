package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/redis"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            0,
			Mode:            gin.TestMode,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Breaker: config.BreakerConfig{
			Enabled:             true,
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             time.Minute,
			ConsecutiveFailures: 5,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestInitializeApp_Memory(t *testing.T) {
	app, cleanup, err := InitializeApp(memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/authors", strings.NewReader(`{"name":"Tolkien"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	app.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestInitializeApp_RedisUnreachable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{
		Enabled:     true,
		Host:        "127.0.0.1",
		Port:        1, // 没有服务监听
		DialTimeout: 100 * time.Millisecond,
	}

	_, _, err := InitializeApp(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideAuthorRepository_WithCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{
		Enabled:   true,
		Host:      mr.Host(),
		Port:      port,
		DetailTTL: time.Minute,
	}

	client, cleanup, err := provideRedis(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	repo := provideAuthorRepository(cfg, nil, client, zap.NewNop())

	saved, err := repo.Save(ctx, author.NewAuthor("Tolkien", ""))
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.DetailKey(redis.EntityAuthor, saved.ID)), "详情读取应经过缓存")
}

func TestProvideDisabledStores(t *testing.T) {
	db, cleanupDB, err := provideDB(memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, db)
	cleanupDB()

	client, cleanupRedis, err := provideRedis(memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
	cleanupRedis()
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := memoryConfig()
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	app := newApp(cfg, server, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("取消后服务未退出")
	}
}
