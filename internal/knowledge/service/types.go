package service

import (
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// DisplayTimeLayout 列表中上传时间的展示格式
const DisplayTimeLayout = "2006-01-02 15:04"

// DocumentResponse 文档响应
type DocumentResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        kbtypes.FileType `json:"type"`
	Size        string           `json:"size"` // 如 1.25MB
	SizeBytes   int64            `json:"size_bytes"`
	UploadDate  string           `json:"uploadDate"`
	FileTypeTag string           `json:"file_type_tag"`
}

// UploadResponse 上传响应
type UploadResponse struct {
	Message     string            `json:"message"`
	FileName    string            `json:"fileName"`
	FilePath    string            `json:"filePath"`
	FileID      string            `json:"fileId"`
	FileTypeTag string            `json:"fileTypeTag"`
	Document    *DocumentResponse `json:"document"`
}

// ToDocumentResponse 转换为响应结构
func ToDocumentResponse(doc *kbtypes.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          doc.ID,
		Name:        doc.Name,
		Type:        doc.Type,
		Size:        doc.DisplaySize(),
		SizeBytes:   doc.SizeBytes,
		UploadDate:  doc.UploadedAt.Local().Format(DisplayTimeLayout),
		FileTypeTag: doc.TypeTag,
	}
}

// ToDocumentResponses 批量转换
func ToDocumentResponses(docs []*kbtypes.Document) []*DocumentResponse {
	items := make([]*DocumentResponse, len(docs))
	for i, doc := range docs {
		items[i] = ToDocumentResponse(doc)
	}
	return items
}
