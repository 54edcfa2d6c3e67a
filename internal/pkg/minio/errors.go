package minio

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

var (
	ErrInvalidArgument   = errors.New("minio: invalid argument")
	ErrObjectNotFound    = errors.New("minio: object not found")
	ErrInvalidObjectName = errors.New("minio: invalid object name")
	ErrClientClosed      = errors.New("minio: client is closed")
)

// notFoundCodes S3 返回的“不存在”错误码
var notFoundCodes = map[string]bool{
	"NoSuchBucket": true,
	"NoSuchKey":    true,
	"NotFound":     true,
}

// Error 带操作名和对象位置的错误
type Error struct {
	Op     string
	Bucket string
	Object string
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("minio: ")
	sb.WriteString(e.Op)
	sb.WriteString(" failed")
	if e.Bucket != "" {
		sb.WriteString(" for bucket=")
		sb.WriteString(e.Bucket)
		if e.Object != "" {
			sb.WriteString(", object=")
			sb.WriteString(e.Object)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound 对象或桶不存在。文件库据此区分“已被外部删除”和真正的存储故障。
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrObjectNotFound) {
		return true
	}
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && notFoundCodes[resp.Code]
}

// WrapError 附加操作上下文，err 为 nil 时返回 nil
func WrapError(op string, err error, bucket, object string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Bucket: bucket, Object: object, Err: err}
}
