package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，HTTP状态码由Code推导（见HTTPStatus）
// 2. Message是面向用户的提示信息
// 3. Err是底层错误（驱动错误等），响应时拼接在Message后面
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户提示
	Err     error  `json:"-"`       // 底层错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，预定义错误包装后仍能被errors.Is识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（默认归类为持久化错误）
func Wrap(err error, message string) *AppError {
	return WrapCode(err, ErrCodePersistence, message)
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return WrapCode(err, ErrCodePersistence, fmt.Sprintf(format, args...))
}

// WrapCode 使用指定错误码包装
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、资源不存在）
// - 5xxxx: 服务端错误（数据库不可达、写入失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal     = 50000 // 内部错误
	ErrCodePersistence  = 50001 // 连接成功后写入/查询失败
	ErrCodeConnectivity = 50002 // 无法连接数据库
	ErrCodeRedisError   = 50003 // Redis错误

	// 资源错误（40400-40499）
	ErrCodeNotFound     = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound = 40402 // 图书不存在

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 请求体无法解析
	ErrCodeMissingFile   = 40902 // 未上传文件
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal     = New(ErrCodeInternal, "Erro interno")
	ErrPersistence  = New(ErrCodePersistence, "Erro ao acessar o banco de dados")
	ErrConnectivity = New(ErrCodeConnectivity, "Erro ao conectar ao MySQL")
	ErrRedisError   = New(ErrCodeRedisError, "Erro ao acessar o Redis")

	ErrNotFound = New(ErrCodeNotFound, "Não encontrado")

	ErrInvalidParams = New(ErrCodeInvalidParams, "Parâmetros inválidos")
	ErrBindError     = New(ErrCodeBindError, "JSON inválido")
	ErrMissingFile   = New(ErrCodeMissingFile, "Nenhum arquivo selecionado")
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
	return WrapCode(err, ErrCodeInternal, "Erro interno")
}

// IsNotFound 判断是否为“资源不存在”类错误
func IsNotFound(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code/100 == 404
}

// HTTPStatus 业务错误码 → HTTP状态码
// 404xx → 404, 409xx → 400, 其余 → 500
func HTTPStatus(code int) int {
	switch code / 100 {
	case 404:
		return http.StatusNotFound
	case 409:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
