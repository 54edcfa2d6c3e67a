package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`              // 业务错误码（0 表示成功）
	Message string      `json:"message,omitempty"` // 提示信息
	Data    interface{} `json:"data"`              // 实际数据
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	Write(c, http.StatusOK, apperrors.Success, "", data)
}

// Created 创建成功（201）
func Created(c *gin.Context, message string, data interface{}) {
	Write(c, http.StatusCreated, apperrors.Success, message, data)
}

// Write 按给定状态写出信封；模型调用失败时对话结果仍以完整信封返回
func Write(c *gin.Context, httpStatus, code int, message string, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(httpStatus, Response{Code: code, Message: message, Data: data})
}

// HandleError 统一错误处理
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code := apperrors.ExtractCode(err)
	Write(c, apperrors.HTTPStatusOf(err), code, apperrors.FormatError(code, apperrors.GetDetails(err)), nil)
}

// ErrorWithCode 用错误码直接响应
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	Write(c, apperrors.GetHTTPStatus(code), code, apperrors.FormatError(code, details...), nil)
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Write(c, http.StatusBadRequest, apperrors.ErrBadRequest, message, nil)
}
