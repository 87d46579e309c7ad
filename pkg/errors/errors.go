package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，HTTP状态码由HTTPStatus根据Code推导
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如编码错误、未知错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Unavailable 包装存储层故障（连接失败、超时、驱动错误）
// 与Wrap的区别：错误码为ErrCodeStoreUnavailable，HTTP层映射为503
func Unavailable(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// Canceled 包装调用方放弃的请求（context.Canceled、context.DeadlineExceeded）
// 存储本身没有故障，HTTP层映射为499，熔断器不计入统计
func Canceled(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeRequestCanceled,
		Message: message,
		Err:     err,
	}
}

// FromContext ctx已取消或超时时返回Canceled错误，否则返回nil
func FromContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return Canceled(err, ErrRequestCanceled.Message)
	}
	return nil
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、资源不存在、冲突）
// - 5xxxx: 服务端错误（数据库异常、缓存异常）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal         = 50000 // 内部错误
	ErrCodeDatabaseError    = 50001 // 数据库错误
	ErrCodeRedisError       = 50002 // Redis错误
	ErrCodeStoreUnavailable = 50003 // 存储不可用

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeAuthorNotFound = 40404 // 作者不存在

	// 冲突错误
	ErrCodeDuplicateEntry = 40009 // 重复记录(通用)
	ErrCodeConflict       = ErrCodeDuplicateEntry

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败

	// 请求取消（49900-49999）
	ErrCodeRequestCanceled = 49900 // 客户端断开或请求超时
)

// StatusClientClosedRequest 客户端关闭连接（nginx约定的499，net/http没有对应常量）
const StatusClientClosedRequest = 499

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal         = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError    = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError       = New(ErrCodeRedisError, "缓存服务错误")
	ErrStoreUnavailable = New(ErrCodeStoreUnavailable, "存储服务不可用")

	// 资源
	ErrNotFound = New(ErrCodeNotFound, "资源不存在")
	ErrConflict = New(ErrCodeConflict, "记录冲突")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")

	// 请求取消
	ErrRequestCanceled = New(ErrCodeRequestCanceled, "请求已取消")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// codeOf 提取错误码，非AppError返回0
func codeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// IsNotFound 是否为"记录不存在"类错误（404xx）
func IsNotFound(err error) bool {
	code := codeOf(err)
	return code >= 40400 && code <= 40499
}

// IsConflict 是否为冲突类错误（重复主键、唯一索引冲突）
func IsConflict(err error) bool {
	return codeOf(err) == ErrCodeConflict
}

// IsStoreUnavailable 是否为存储故障类错误
// 历史代码里的ErrCodeDatabaseError/ErrCodeRedisError同样归为这一类
func IsStoreUnavailable(err error) bool {
	switch codeOf(err) {
	case ErrCodeStoreUnavailable, ErrCodeDatabaseError, ErrCodeRedisError:
		return true
	}
	return false
}

// IsContextDone err链中是否有context.Canceled或context.DeadlineExceeded
func IsContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled 是否为请求取消类错误
// 没有经过Canceled包装的原始ctx错误同样算
func IsCanceled(err error) bool {
	return codeOf(err) == ErrCodeRequestCanceled || IsContextDone(err)
}

// IsInvalidParams 是否为参数类错误
func IsInvalidParams(err error) bool {
	switch codeOf(err) {
	case ErrCodeInvalidParams, ErrCodeBindError:
		return true
	}
	return false
}

// HTTPStatus 业务错误 → HTTP状态码
//
//	Canceled         → 499
//	NotFound         → 404
//	Conflict         → 409
//	StoreUnavailable → 503
//	InvalidParams    → 400
//	其他             → 500
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsCanceled(err):
		return StatusClientClosedRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	case IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	case IsInvalidParams(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
