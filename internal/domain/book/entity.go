package book

import (
	"time"
)

// Book 图书实体
// 设计说明:
// 1. ID由存储层分配(自增主键),创建后不可变
// 2. 其余字段只能通过整体保存(Save)修改
// 3. 不关联Author:当前没有外键或归属关系的需求
type Book struct {
	ID            uint
	Title         string // 书名
	ISBN          string // ISBN号
	Publisher     string // 出版社
	PublishedYear int    // 出版年份,0表示未知
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书(尚未分配ID)
func NewBook(title, isbn, publisher string, publishedYear int) *Book {
	return &Book{
		Title:         title,
		ISBN:          isbn,
		Publisher:     publisher,
		PublishedYear: publishedYear,
	}
}

// Identity 返回图书ID,0表示尚未持久化
func (b *Book) Identity() uint {
	return b.ID
}

// AssignIdentity 由存储层分配ID时调用
func (b *Book) AssignIdentity(id uint) {
	b.ID = id
}

// CreatedTime 创建时间
func (b *Book) CreatedTime() time.Time {
	return b.CreatedAt
}

// Stamp 设置时间戳
func (b *Book) Stamp(createdAt, updatedAt time.Time) {
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
}
