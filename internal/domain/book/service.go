package book

import (
	"context"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 当前只做委托,与Repository一一对应
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// ListBooks 查询全部图书
	ListBooks(ctx context.Context) ([]*Book, error)

	// GetBook 根据ID获取图书,不存在返回ErrBookNotFound
	GetBook(ctx context.Context, id uint) (*Book, error)

	// CreateBook 创建图书,ID由存储层分配
	CreateBook(ctx context.Context, b *Book) (*Book, error)

	// UpdateBook 整体覆盖已存在的图书
	UpdateBook(ctx context.Context, b *Book) (*Book, error)

	// DeleteBook 删除图书
	DeleteBook(ctx context.Context, id uint) error
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ListBooks 查询全部图书
func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.FindAll(ctx)
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, b *Book) (*Book, error) {
	return s.repo.Save(ctx, b)
}

// UpdateBook 更新图书
func (s *service) UpdateBook(ctx context.Context, b *Book) (*Book, error) {
	return s.repo.Save(ctx, b)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.DeleteByID(ctx, id)
}
