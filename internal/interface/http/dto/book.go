package dto

import (
	"github.com/samber/lo"

	"github.com/xiebiao/bookstore-api/internal/domain/book"
)

// BookRequest 创建/更新图书请求
// 不做字段校验：书名、ISBN等都允许为空
type BookRequest struct {
	Title         string `json:"title" example:"The Hobbit"`
	ISBN          string `json:"isbn" example:"9780547928227"`
	Publisher     string `json:"publisher" example:"Houghton Mifflin"`
	PublishedYear int    `json:"published_year" example:"1937"`
}

// ToEntity 转换为领域实体（id为0表示新建）
func (r *BookRequest) ToEntity(id uint) *book.Book {
	b := book.NewBook(r.Title, r.ISBN, r.Publisher, r.PublishedYear)
	b.ID = id
	return b
}

// BookResponse 图书响应
type BookResponse struct {
	ID            uint   `json:"id" example:"1"`
	Title         string `json:"title" example:"The Hobbit"`
	ISBN          string `json:"isbn" example:"9780547928227"`
	Publisher     string `json:"publisher" example:"Houghton Mifflin"`
	PublishedYear int    `json:"published_year" example:"1937"`
	CreatedAt     string `json:"created_at" example:"2024-01-15 10:30:00"`
	UpdatedAt     string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// NewBookResponse 领域实体 → 响应
func NewBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		ISBN:          b.ISBN,
		Publisher:     b.Publisher,
		PublishedYear: b.PublishedYear,
		CreatedAt:     b.CreatedAt.Format(TimeLayout),
		UpdatedAt:     b.UpdatedAt.Format(TimeLayout),
	}
}

// NewBookListResponse 列表响应，空列表序列化为[]
func NewBookListResponse(books []*book.Book) []*BookResponse {
	return lo.Map(books, func(b *book.Book, _ int) *BookResponse {
		return NewBookResponse(b)
	})
}
