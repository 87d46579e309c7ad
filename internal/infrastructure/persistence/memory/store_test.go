package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	"github.com/xiebiao/bookstore-api/internal/domain/crud/crudtest"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

func TestAuthorStore_Contract(t *testing.T) {
	crudtest.Run(t, crudtest.Harness[author.Author]{
		New: func(t *testing.T) crud.Repository[author.Author] {
			return NewAuthorRepository()
		},
		Make: func(i int) *author.Author {
			return author.NewAuthor(fmt.Sprintf("作者-%d", i), "简介")
		},
		Mutate: func(a *author.Author) { a.Name += "（修订）" },
		ID:     func(a *author.Author) uint { return a.ID },
		SetID:  func(a *author.Author, id uint) { a.ID = id },
		Errors: author.Errors,
		// 内存实现可以放开并发度
		Parallel: 200,
	})
}

func TestBookStore_Contract(t *testing.T) {
	crudtest.Run(t, crudtest.Harness[book.Book]{
		New: func(t *testing.T) crud.Repository[book.Book] {
			return NewBookRepository()
		},
		Make: func(i int) *book.Book {
			return book.NewBook(fmt.Sprintf("书名-%d", i), fmt.Sprintf("978-7-%05d", i), "出版社", 2000+i)
		},
		Mutate: func(b *book.Book) { b.Publisher = "新出版社" },
		ID:     func(b *book.Book) uint { return b.ID },
		SetID:  func(b *book.Book, id uint) { b.ID = id },
		Errors: book.Errors,
	})
}

func TestStore_Timestamps(t *testing.T) {
	ctx := context.Background()
	store := NewStore[author.Author](author.Errors)

	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return t0 }

	saved, err := store.Save(ctx, author.NewAuthor("Tolkien", ""))
	require.NoError(t, err)
	assert.Equal(t, t0, saved.CreatedAt)
	assert.Equal(t, t0, saved.UpdatedAt)

	t1 := t0.Add(time.Hour)
	store.now = func() time.Time { return t1 }

	// PUT请求体不带创建时间，更新后应保留原值
	updated, err := store.Save(ctx, &author.Author{ID: saved.ID, Name: "J.R.R. Tolkien"})
	require.NoError(t, err)
	assert.Equal(t, t0, updated.CreatedAt)
	assert.Equal(t, t1, updated.UpdatedAt)
	assert.Equal(t, "J.R.R. Tolkien", updated.Name)
}

func TestStore_FindAllOrderedByID(t *testing.T) {
	ctx := context.Background()
	store := NewStore[book.Book](book.Errors)

	for i := 0; i < 10; i++ {
		_, err := store.Save(ctx, book.NewBook(fmt.Sprintf("b%d", i), "", "", 0))
		require.NoError(t, err)
	}
	require.NoError(t, store.DeleteByID(ctx, 3))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 9)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	assert.Equal(t, 9, store.Len())
}

func TestStore_DeletedIDNotReused(t *testing.T) {
	ctx := context.Background()
	store := NewStore[author.Author](author.Errors)

	first, err := store.Save(ctx, author.NewAuthor("a", ""))
	require.NoError(t, err)
	require.NoError(t, store.DeleteByID(ctx, first.ID))

	second, err := store.Save(ctx, author.NewAuthor("b", ""))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore[author.Author](author.Errors)

	_, err := store.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apperrors.StatusClientClosedRequest, apperrors.HTTPStatus(err))

	_, err = store.Save(ctx, author.NewAuthor("a", ""))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, apperrors.IsCanceled(err))
	assert.Zero(t, store.Len())
}
