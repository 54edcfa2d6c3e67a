package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// ErrorKind categorizes a failed model call.
type ErrorKind string

const (
	KindConnection   ErrorKind = "connection"
	KindRateLimit    ErrorKind = "rate_limit"
	KindUnauthorized ErrorKind = "unauthorized"
	KindStatus       ErrorKind = "status"
	KindUnknown      ErrorKind = "unknown"
)

// ModelError is a categorized model-call failure.
type ModelError struct {
	Kind       ErrorKind
	StatusCode int    // upstream HTTP status, 0 when the request never got an answer
	Message    string // upstream error message, if any
	Err        error
}

func (e *ModelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model call failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model call failed (%s): %v", e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status class reported to the caller for this failure.
func (e *ModelError) HTTPStatus() int {
	switch e.Kind {
	case KindConnection:
		return http.StatusServiceUnavailable
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindStatus:
		if e.StatusCode >= 400 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Notice is the plain-language text stored as the assistant reply.
func (e *ModelError) Notice() string {
	switch e.Kind {
	case KindConnection:
		return fmt.Sprintf("无法连接到DeepSeek服务，请检查网络或代理设置: %v", e.Err)
	case KindRateLimit:
		return fmt.Sprintf("请求DeepSeek太频繁，请稍后再试: %v", e.Err)
	case KindUnauthorized:
		return "DeepSeek服务认证失败，请检查API Key是否有效或账户余额。"
	case KindStatus:
		msg := e.Message
		if msg == "" {
			msg = "未知错误"
		}
		return fmt.Sprintf("DeepSeek服务内部错误: %d - %s", e.StatusCode, msg)
	default:
		return fmt.Sprintf("抱歉，DeepSeek助手在处理您的请求时遇到问题: %v", e.Err)
	}
}

// AppError converts the failure into the application error envelope.
func (e *ModelError) AppError() *apperrors.AppError {
	code := apperrors.ErrModelFailed
	switch e.Kind {
	case KindConnection:
		code = apperrors.ErrModelConnection
	case KindRateLimit:
		code = apperrors.ErrModelRateLimited
	case KindUnauthorized:
		code = apperrors.ErrModelUnauthorized
	case KindStatus:
		code = apperrors.ErrModelStatus
	}
	return apperrors.Wrap(e, code, e.Notice()).WithStatus(e.HTTPStatus())
}

// Classify maps any error returned by the OpenAI-compatible client onto a ModelError.
func Classify(err error) *ModelError {
	if err == nil {
		return nil
	}

	var me *ModelError
	if errors.As(err, &me) {
		return me
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, string(reqErr.Body), err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return &ModelError{Kind: KindConnection, Err: err}
	}

	return &ModelError{Kind: KindUnknown, Err: err}
}

func fromStatus(status int, message string, err error) *ModelError {
	switch {
	case status == http.StatusTooManyRequests:
		return &ModelError{Kind: KindRateLimit, StatusCode: status, Message: message, Err: err}
	case status == http.StatusUnauthorized:
		return &ModelError{Kind: KindUnauthorized, StatusCode: status, Message: message, Err: err}
	case status >= 400:
		return &ModelError{Kind: KindStatus, StatusCode: status, Message: message, Err: err}
	default:
		return &ModelError{Kind: KindUnknown, StatusCode: status, Message: message, Err: err}
	}
}
