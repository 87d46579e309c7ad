package rdb

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// repository 基于GORM的泛型仓储
// 设计说明：
// 1. E是领域实体，M是GORM模型，两者通过toModel/toEntity转换
// 2. ID由数据库自增主键分配，并发插入的唯一性由数据库保证
// 3. gorm.ErrRecordNotFound转换为实体的NotFound错误，唯一键冲突转换为Conflict，
//    其余数据库错误统一包装为存储不可用
type repository[E any, M any] struct {
	db       *gorm.DB
	label    string // 用于错误信息，如"作者"
	errs     crud.Errors
	toModel  func(*E) *M
	toEntity func(*M) *E
	idOf     func(*M) uint
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) author.Repository {
	return &repository[author.Author, AuthorModel]{
		db:       db,
		label:    "作者",
		errs:     author.Errors,
		toModel:  toAuthorModel,
		toEntity: toAuthorEntity,
		idOf:     func(m *AuthorModel) uint { return m.ID },
	}
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &repository[book.Book, BookModel]{
		db:       db,
		label:    "图书",
		errs:     book.Errors,
		toModel:  toBookModel,
		toEntity: toBookEntity,
		idOf:     func(m *BookModel) uint { return m.ID },
	}
}

// FindAll 查询全部记录（按ID升序）
func (r *repository[E, M]) FindAll(ctx context.Context) ([]*E, error) {
	var models []M
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, r.translate(err, "查询"+r.label+"列表失败")
	}

	return lo.Map(models, func(m M, _ int) *E {
		return r.toEntity(&m)
	}), nil
}

// FindByID 根据ID查询
func (r *repository[E, M]) FindByID(ctx context.Context, id uint) (*E, error) {
	if id == 0 {
		return nil, r.errs.NotFound
	}

	var model M
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, r.translate(err, "查询"+r.label+"失败")
	}

	return r.toEntity(&model), nil
}

// Save 插入或整体更新
//   - ID为0：INSERT，由自增主键分配ID
//   - ID非0：记录必须已存在，覆盖全部可变字段，创建时间保持不变
func (r *repository[E, M]) Save(ctx context.Context, record *E) (*E, error) {
	if record == nil {
		return nil, crud.ErrNilRecord
	}

	model := r.toModel(record)
	id := r.idOf(model)
	db := r.db.WithContext(ctx)

	if id == 0 {
		if err := db.Create(model).Error; err != nil {
			return nil, r.translate(err, "创建"+r.label+"失败")
		}
		return r.toEntity(model), nil
	}

	var existing M
	if err := db.First(&existing, id).Error; err != nil {
		return nil, r.translate(err, "查询"+r.label+"失败")
	}

	// Select("*")让零值字段也参与更新；created_at以库中为准
	if err := db.Model(model).Select("*").Omit("created_at").Updates(model).Error; err != nil {
		return nil, r.translate(err, "更新"+r.label+"失败")
	}

	// 重新读取，拿到数据库中的时间戳
	var saved M
	if err := db.First(&saved, id).Error; err != nil {
		return nil, r.translate(err, "查询"+r.label+"失败")
	}

	return r.toEntity(&saved), nil
}

// DeleteByID 删除记录（物理删除）
func (r *repository[E, M]) DeleteByID(ctx context.Context, id uint) error {
	if id == 0 {
		return r.errs.NotFound
	}

	result := r.db.WithContext(ctx).Delete(new(M), id)
	if result.Error != nil {
		return r.translate(result.Error, "删除"+r.label+"失败")
	}

	if result.RowsAffected == 0 {
		return r.errs.NotFound
	}

	return nil
}

// translate 数据库错误 → 业务错误
// ctx取消或超时是调用方放弃了请求，不算存储故障
func (r *repository[E, M]) translate(err error, message string) error {
	switch {
	case apperrors.IsContextDone(err):
		return apperrors.Canceled(err, message)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.errs.NotFound
	case isDuplicateError(err):
		return r.errs.Conflict
	default:
		return apperrors.Unavailable(err, message)
	}
}
