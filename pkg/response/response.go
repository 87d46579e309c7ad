package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookstore-api/pkg/errors"
)

// ErrorBody 错误响应结构
// 设计说明：
// 1. 成功响应直接返回资源本身（数组/对象），不套信封
// 2. 失败响应统一为{code, message}，Code是业务错误码，HTTP状态码由错误类型推导
// 3. 内部错误（AppError.Err）只记录日志，不返回给客户端
type ErrorBody struct {
	Code    int    `json:"code" example:"40404"`
	Message string `json:"message" example:"作者不存在"`
}

// OK 200响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201响应（新建资源）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 204响应（删除成功）
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	author, err := h.svc.GetAuthor(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := apperrors.HTTPStatus(appErr)

	// 记录详细错误到日志（包含内部错误）
	if appErr.Err != nil {
		fields := []zap.Field{
			zap.Int("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		}
		if requestID := c.GetString(RequestIDKey); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if status >= http.StatusInternalServerError {
			zap.L().Error(appErr.Message, fields...)
		} else {
			zap.L().Warn(appErr.Message, fields...)
		}
	}

	// 让访问日志中间件能拿到错误
	_ = c.Error(err)

	c.AbortWithStatusJSON(status, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// ErrorWithCode 自定义状态码、错误码和消息
func ErrorWithCode(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Code:    code,
		Message: message,
	})
}

// RequestIDKey gin.Context中保存请求ID的键（由middleware.RequestID写入）
const RequestIDKey = "request_id"
