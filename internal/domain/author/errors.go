package author

import (
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// 作者领域错误定义
var (
	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")

	// ErrAuthorConflict 作者记录冲突(主键或唯一索引重复)
	ErrAuthorConflict = apperrors.New(apperrors.ErrCodeConflict, "作者记录冲突")
)

// Errors 供泛型仓储实现使用的错误集合
var Errors = crud.Errors{
	NotFound: ErrAuthorNotFound,
	Conflict: ErrAuthorConflict,
}
