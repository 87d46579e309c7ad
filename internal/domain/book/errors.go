package book

import (
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrBookConflict 图书记录冲突(主键或唯一索引重复)
	ErrBookConflict = apperrors.New(apperrors.ErrCodeConflict, "图书记录冲突")
)

// Errors 供泛型仓储实现使用的错误集合
var Errors = crud.Errors{
	NotFound: ErrBookNotFound,
	Conflict: ErrBookConflict,
}
