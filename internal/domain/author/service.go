package author

import (
	"context"
)

// Service 作者领域服务接口
// 设计说明:
// 1. 目前没有业务规则,所有方法直接委托给Repository,错误原样返回
// 2. 保留独立的接口边界,后续的校验、权限等规则加在这一层,而不是写进Handler
type Service interface {
	// ListAuthors 查询全部作者
	ListAuthors(ctx context.Context) ([]*Author, error)

	// GetAuthor 根据ID获取作者,不存在返回ErrAuthorNotFound
	GetAuthor(ctx context.Context, id uint) (*Author, error)

	// CreateAuthor 创建作者,ID由存储层分配
	CreateAuthor(ctx context.Context, a *Author) (*Author, error)

	// UpdateAuthor 整体覆盖已存在的作者,不存在返回ErrAuthorNotFound
	UpdateAuthor(ctx context.Context, a *Author) (*Author, error)

	// DeleteAuthor 删除作者,不存在返回ErrAuthorNotFound
	DeleteAuthor(ctx context.Context, id uint) error
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建作者领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListAuthors(ctx context.Context) ([]*Author, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) GetAuthor(ctx context.Context, id uint) (*Author, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) CreateAuthor(ctx context.Context, a *Author) (*Author, error) {
	return s.repo.Save(ctx, a)
}

func (s *service) UpdateAuthor(ctx context.Context, a *Author) (*Author, error) {
	return s.repo.Save(ctx, a)
}

func (s *service) DeleteAuthor(ctx context.Context, id uint) error {
	return s.repo.DeleteByID(ctx, id)
}
