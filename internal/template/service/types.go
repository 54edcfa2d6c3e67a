package service

import "github.com/lk2023060901/ai-notebook-backend/internal/template/types"

// ExtractFromFileRequest 从已上传文件提取模板
type ExtractFromFileRequest struct {
	FileID string `json:"fileId"`
}

// ExtractFromFileResponse 文件提取结果
type ExtractFromFileResponse struct {
	Message       string         `json:"message"`
	Pairs         int            `json:"pairs"`
	ExtractedData []*types.Entry `json:"extracted_data"`
}

// RewriteRequest 按方法改写答案
type RewriteRequest struct {
	Question       string `json:"question"`
	OriginalAnswer string `json:"originalAnswer"`
	MethodIndex    *int   `json:"methodIndex" binding:"required"`
}

// RewriteResponse 改写结果
type RewriteResponse struct {
	RewrittenAnswer string `json:"rewrittenAnswer"`
}

// SummarizeRequest 段落重点梳理
type SummarizeRequest struct {
	Paragraph string `json:"paragraph"`
}

// ExtractRequest 单组问答提取
type ExtractRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExtractResponse 单组问答提取结果
type ExtractResponse struct {
	Entry *types.Entry `json:"entry"`
	Added bool         `json:"added"`
}
