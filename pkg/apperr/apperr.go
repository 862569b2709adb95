// Package apperr 定义对外暴露的错误类型
// 每个错误都携带稳定的 Kind（供客户端判断）和可读的 Message
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind 错误类别
type Kind string

const (
	KindInvalidTarget   Kind = "InvalidTarget"   // 对自己发起好友关系
	KindAlreadyExists   Kind = "AlreadyExists"   // 两人之间已存在关系
	KindNotFound        Kind = "NotFound"        // 关系或用户不存在
	KindUnauthorized    Kind = "Unauthorized"    // 缺少或无效的调用者身份
	KindInvalidArgument Kind = "InvalidArgument" // 请求参数不合法
	KindInternal        Kind = "Internal"        // 存储等内部错误
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// 用于 errors.Is 比较的哨兵错误，只比较 Kind
var (
	ErrInvalidTarget   = &Error{Kind: KindInvalidTarget, Message: "invalid target"}
	ErrAlreadyExists   = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrInternal        = &Error{Kind: KindInternal, Message: "internal error"}
)

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层原因
func (e *Error) Unwrap() error { return e.cause }

// Is 同类错误视为相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New 创建业务错误
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误，cause 带上调用栈
func Wrap(kind Kind, cause error, message string) *Error {
	if cause == nil {
		return &Error{Kind: kind, Message: message}
	}
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// Internal 包装存储层等内部错误
func Internal(cause error, message string) *Error {
	return Wrap(KindInternal, cause, message)
}

// KindOf 返回错误的类别，非业务错误一律视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf 返回可以展示给调用方的信息
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPCode 错误类别对应的状态码
func HTTPCode(kind Kind) int {
	switch kind {
	case KindInvalidTarget, KindInvalidArgument:
		return http.StatusBadRequest
	case KindAlreadyExists:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
