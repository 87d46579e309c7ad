package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// parseID 解析路径参数中的ID，必须是正整数
func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidParams, "无效的ID: "+raw)
	}

	return uint(id), nil
}

// bindJSON 绑定请求体，失败时返回参数格式错误
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeBindError,
			Message: "参数格式错误: " + err.Error(),
			Err:     err,
		}
	}
	return nil
}
