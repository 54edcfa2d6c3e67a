package errors

import (
	"errors"
	"fmt"
)

// AppError 带业务错误码的结构化错误
type AppError struct {
	Code    int
	Message string
	Err     error
	Details string
	// Status 非零时覆盖错误码表中的 HTTP 状态（上游模型透传状态码时使用）
	Status int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 返回该错误对应的 HTTP 状态
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return GetHTTPStatus(e.Code)
}

// WithStatus 设置覆盖的 HTTP 状态
func (e *AppError) WithStatus(status int) *AppError {
	e.Status = status
	return e
}

func firstDetail(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}

// New 用错误码创建 AppError，消息取自错误码表
func New(code int, details ...string) *AppError {
	return &AppError{Code: code, Message: GetMessage(code), Details: firstDetail(details)}
}

// Wrap 用错误码包装已有错误；已是 AppError 时原样返回
func Wrap(err error, code int, details ...string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := as(err); ok {
		if d := firstDetail(details); d != "" {
			appErr.Details = d
		}
		return appErr
	}
	return &AppError{Code: code, Message: GetMessage(code), Err: err, Details: firstDetail(details)}
}

func as(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// Is 判断 err 链上是否有指定错误码的 AppError
func Is(err error, code int) bool {
	appErr, ok := as(err)
	return ok && appErr.Code == code
}

// ExtractCode 提取错误码，非 AppError 一律视为内部错误
func ExtractCode(err error) int {
	if appErr, ok := as(err); ok {
		return appErr.Code
	}
	return ErrInternalServer
}

// HTTPStatusOf 提取错误对应的 HTTP 状态
func HTTPStatusOf(err error) int {
	if appErr, ok := as(err); ok {
		return appErr.HTTPStatus()
	}
	return GetHTTPStatus(ErrInternalServer)
}

// GetDetails 提取错误详情：优先 Details，其次底层错误
func GetDetails(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := as(err)
	switch {
	case !ok:
		return err.Error()
	case appErr.Details != "":
		return appErr.Details
	case appErr.Err != nil:
		return appErr.Err.Error()
	}
	return ""
}
