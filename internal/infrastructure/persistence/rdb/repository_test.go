package rdb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	"github.com/xiebiao/bookstore-api/internal/domain/crud/crudtest"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-api/internal/infrastructure/persistence/guard"
	"github.com/xiebiao/bookstore-api/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

var dbSeq atomic.Int64

// setupTestDB 每个测试一个独立的SQLite内存库
// 使用cache=shared让连接池中的连接看到同一个库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("bookstore_test_%d", dbSeq.Add(1))
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:          config.DriverSQLite,
			Path:            fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
		},
	}

	db, cleanup, err := NewDB(cfg, zap.NewNop())
	require.NoError(t, err, "创建测试数据库失败")
	t.Cleanup(cleanup)

	return db
}

func TestAuthorRepository_Contract(t *testing.T) {
	crudtest.Run(t, crudtest.Harness[author.Author]{
		New: func(t *testing.T) crud.Repository[author.Author] {
			return NewAuthorRepository(setupTestDB(t))
		},
		Make: func(i int) *author.Author {
			return author.NewAuthor(fmt.Sprintf("作者-%d", i), "简介")
		},
		Mutate: func(a *author.Author) { a.Name += "（修订）" },
		ID:     func(a *author.Author) uint { return a.ID },
		SetID:  func(a *author.Author, id uint) { a.ID = id },
		Errors: author.Errors,
	})
}

func TestBookRepository_Contract(t *testing.T) {
	crudtest.Run(t, crudtest.Harness[book.Book]{
		New: func(t *testing.T) crud.Repository[book.Book] {
			return NewBookRepository(setupTestDB(t))
		},
		Make: func(i int) *book.Book {
			return book.NewBook(fmt.Sprintf("书名-%d", i), fmt.Sprintf("978-7-%05d", i), "出版社", 2000+i)
		},
		Mutate: func(b *book.Book) { b.PublishedYear = 1999 },
		ID:     func(b *book.Book) uint { return b.ID },
		SetID:  func(b *book.Book, id uint) { b.ID = id },
		Errors: book.Errors,
	})
}

func TestRepository_SaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthorRepository(setupTestDB(t))

	saved, err := repo.Save(ctx, author.NewAuthor("Tolkien", ""))
	require.NoError(t, err)
	require.False(t, saved.CreatedAt.IsZero(), "插入后应有创建时间")

	// 请求体里没有时间戳
	updated, err := repo.Save(ctx, &author.Author{ID: saved.ID, Name: "J.R.R. Tolkien"})
	require.NoError(t, err)

	assert.Equal(t, "J.R.R. Tolkien", updated.Name)
	assert.Empty(t, updated.Bio)
	assert.True(t, saved.CreatedAt.Equal(updated.CreatedAt), "创建时间不应被覆盖")
	assert.False(t, updated.UpdatedAt.Before(saved.UpdatedAt))
}

func TestRepository_ZeroValuesOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(setupTestDB(t))

	saved, err := repo.Save(ctx, book.NewBook("Dune", "978-0441013593", "Ace", 1965))
	require.NoError(t, err)

	// 整体覆盖：零值字段也要写入
	_, err = repo.Save(ctx, &book.Book{ID: saved.ID, Title: "Dune"})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, found.ISBN)
	assert.Empty(t, found.Publisher)
	assert.Zero(t, found.PublishedYear)
}

func TestRepository_DuplicatePrimaryKeyIsConflict(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuthorRepository(db).(*repository[author.Author, AuthorModel])

	saved, err := repo.Save(ctx, author.NewAuthor("Tolkien", ""))
	require.NoError(t, err)

	// 绕过Save直接插入相同主键
	err = db.WithContext(ctx).Create(&AuthorModel{ID: saved.ID, Name: "dup"}).Error
	require.Error(t, err)

	assert.Same(t, author.ErrAuthorConflict, repo.translate(err, "创建作者失败"))
}

func TestRepository_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewBookRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.FindAll(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err), "连接关闭后应返回存储不可用: %v", err)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))

	_, err = repo.Save(ctx, book.NewBook("x", "", "", 0))
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

// TestRepository_CanceledDoesNotTripBreaker 客户端断开的请求不能替其他调用方打开熔断器
func TestRepository_CanceledDoesNotTripBreaker(t *testing.T) {
	cb := guard.NewBreaker("rdb-author-canceled", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Hour,
	}, 3, zap.NewNop())
	repo := guard.WithBreaker(NewAuthorRepository(setupTestDB(t)), cb)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		_, err := repo.FindAll(canceled)
		require.Error(t, err)
		assert.True(t, apperrors.IsCanceled(err), "应为取消错误: %v", err)
		assert.False(t, apperrors.IsStoreUnavailable(err))
		assert.Equal(t, apperrors.StatusClientClosedRequest, apperrors.HTTPStatus(err))
	}
	require.Equal(t, circuitbreaker.StateClosed, cb.State())

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err, "正常请求不应被熔断")
	assert.Empty(t, all)
}

func TestRepository_TranslateContextErrors(t *testing.T) {
	repo := NewBookRepository(nil).(*repository[book.Book, BookModel])

	for _, err := range []error{context.Canceled, context.DeadlineExceeded, fmt.Errorf("query: %w", context.Canceled)} {
		got := repo.translate(err, "查询图书失败")
		assert.True(t, apperrors.IsCanceled(got), "%v", err)
		assert.False(t, apperrors.IsStoreUnavailable(got), "%v", err)
		assert.ErrorIs(t, got, err)
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm翻译后的错误", gorm.ErrDuplicatedKey, true},
		{"MySQL 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}, true},
		{"MySQL 其他错误", &mysqldriver.MySQLError{Number: 1045, Message: "Access denied"}, false},
		{"PostgreSQL 23505", &pgconn.PgError{Code: "23505"}, true},
		{"PostgreSQL 其他错误", &pgconn.PgError{Code: "57P01"}, false},
		{"包装后的错误", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"SQLite 文本", errors.New("UNIQUE constraint failed: authors.id"), true},
		{"普通错误", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateError(tt.err))
		})
	}
}

func TestOpenDialector(t *testing.T) {
	for _, driver := range []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite} {
		d, err := openDialector(config.DatabaseConfig{Driver: driver})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := openDialector(config.DatabaseConfig{Driver: config.DriverMemory})
	assert.Error(t, err, "memory驱动不走GORM")
}
