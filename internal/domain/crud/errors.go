package crud

import (
	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// ErrNilRecord 保存空记录
var ErrNilRecord = apperrors.New(apperrors.ErrCodeInvalidParams, "记录不能为空")
