package errs

import (
	"errors"
	"fmt"
)

// Kind 错误分类，handler据此映射HTTP状态码
type Kind int

const (
	KindForbidden Kind = iota + 1
	KindNotFound
	KindConflict
	KindInvalid
	KindInternal
)

type Error struct {
	Kind   Kind
	Msg    string            // 面向用户的消息；KindInternal时不直接透出
	Fields map[string]string // 字段级校验信息（KindInvalid）
	Err    error             // 底层原因，写日志用
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Msg: msg} }

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }

func Invalid(msg string) *Error { return &Error{Kind: KindInvalid, Msg: msg} }

// InvalidFields 带字段级提示的参数错误
func InvalidFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindInvalid, Msg: msg, Fields: fields}
}

// Internal 包装存储/IO等内部故障；用户只看到统一提示
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

func Internalf(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Wrap 已分类错误原样返回，其余包装为内部错误
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(err)
}

// KindOf 未分类错误一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool  { return KindOf(err) == KindConflict }
func IsInvalid(err error) bool   { return KindOf(err) == KindInvalid }
