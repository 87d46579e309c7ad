package memory

import (
	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
)

// NewAuthorRepository 创建内存作者仓储
func NewAuthorRepository() author.Repository {
	return NewStore[author.Author](author.Errors)
}

// NewBookRepository 创建内存图书仓储
func NewBookRepository() book.Repository {
	return NewStore[book.Book](book.Errors)
}
