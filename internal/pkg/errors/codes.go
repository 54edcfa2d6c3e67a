package errors

import (
	"fmt"
	"net/http"
)

// Code 业务错误码与 HTTP 状态的对应关系
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// 通用错误 (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// 对话错误 (2000-2999)
	ErrChatEmptyMessage    = 2000
	ErrChatSessionNotFound = 2001
	ErrChatNoMessages      = 2002
	ErrChatPersistFailed   = 2003

	// 文档错误 (3000-3999)
	ErrDocumentNotFound      = 3000
	ErrDocumentUnsupported   = 3001
	ErrDocumentExtractFailed = 3002
	ErrDocumentUploadFailed  = 3003
	ErrDocumentMissingFile   = 3004
	ErrDocumentStorageFailed = 3005

	// 模型调用错误 (4000-4999)
	ErrModelConnection   = 4000
	ErrModelRateLimited  = 4001
	ErrModelUnauthorized = 4002
	ErrModelStatus       = 4003
	ErrModelFailed       = 4004

	// 模板错误 (5000-5999)
	ErrTemplateEmptyInput    = 5000
	ErrTemplateInvalidIndex  = 5001
	ErrTemplateExtractFailed = 5002
	ErrTemplateRewriteFailed = 5003
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrChatEmptyMessage:    {ErrChatEmptyMessage, http.StatusBadRequest, "消息内容不能为空"},
	ErrChatSessionNotFound: {ErrChatSessionNotFound, http.StatusNotFound, "对话不存在"},
	ErrChatNoMessages:      {ErrChatNoMessages, http.StatusNotFound, "对话中没有可导出的消息"},
	ErrChatPersistFailed:   {ErrChatPersistFailed, http.StatusInternalServerError, "对话数据保存失败"},

	ErrDocumentNotFound:      {ErrDocumentNotFound, http.StatusNotFound, "文件未找到"},
	ErrDocumentUnsupported:   {ErrDocumentUnsupported, http.StatusBadRequest, "不支持的文件类型"},
	ErrDocumentExtractFailed: {ErrDocumentExtractFailed, http.StatusInternalServerError, "文件内容提取失败"},
	ErrDocumentUploadFailed:  {ErrDocumentUploadFailed, http.StatusInternalServerError, "文件上传失败"},
	ErrDocumentMissingFile:   {ErrDocumentMissingFile, http.StatusBadRequest, "没有选择文件"},
	ErrDocumentStorageFailed: {ErrDocumentStorageFailed, http.StatusInternalServerError, "文件存储操作失败"},

	ErrModelConnection:   {ErrModelConnection, http.StatusServiceUnavailable, "无法连接到模型服务"},
	ErrModelRateLimited:  {ErrModelRateLimited, http.StatusTooManyRequests, "模型服务请求过于频繁"},
	ErrModelUnauthorized: {ErrModelUnauthorized, http.StatusUnauthorized, "模型服务认证失败"},
	ErrModelStatus:       {ErrModelStatus, http.StatusBadGateway, "模型服务返回错误"},
	ErrModelFailed:       {ErrModelFailed, http.StatusInternalServerError, "模型调用失败"},

	ErrTemplateEmptyInput:    {ErrTemplateEmptyInput, http.StatusBadRequest, "输入内容不能为空"},
	ErrTemplateInvalidIndex:  {ErrTemplateInvalidIndex, http.StatusBadRequest, "无效的方法索引"},
	ErrTemplateExtractFailed: {ErrTemplateExtractFailed, http.StatusInternalServerError, "模板提取失败"},
	ErrTemplateRewriteFailed: {ErrTemplateRewriteFailed, http.StatusInternalServerError, "答案改写失败"},
}

// GetCode 查询错误码定义，未知错误码按内部错误处理
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus 返回错误码对应的 HTTP 状态
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage 返回错误码对应的提示
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError 是否 4xx
func IsClientError(code int) bool {
	s := GetHTTPStatus(code)
	return s >= 400 && s < 500
}

// FormatError 拼接错误提示和详情
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
