package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileType 文件类型（小写扩展名，不含点）
type FileType string

const (
	FileTypeTxt      FileType = "txt"
	FileTypePdf      FileType = "pdf"
	FileTypeDocx     FileType = "docx"
	FileTypeMd       FileType = "md"
	FileTypeMarkdown FileType = "markdown"
	FileTypeJson     FileType = "json"
	FileTypeLog      FileType = "log"
	FileTypePy       FileType = "py"
	FileTypeJs       FileType = "js"
	FileTypeCss      FileType = "css"
	FileTypeHtml     FileType = "html"
	FileTypeXml      FileType = "xml"
	FileTypeCsv      FileType = "csv"
)

// String 返回字符串表示
func (ft FileType) String() string {
	return string(ft)
}

// FileTypeOf 由文件名推断文件类型
func FileTypeOf(name string) FileType {
	return FileType(strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")))
}

// DefaultTypeTag 上传时未指定标签的默认值
const DefaultTypeTag = "unknown"

// Document 已上传文档的元数据
type Document struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Type       FileType  `json:"type"`
	SizeBytes  int64     `json:"size_bytes" validate:"gte=0"`
	UploadedAt time.Time `json:"uploaded_at"`
	TypeTag    string    `json:"file_type_tag"`
}

// DisplaySize 以 MB 展示文件大小
func (d *Document) DisplaySize() string {
	return fmt.Sprintf("%.2fMB", float64(d.SizeBytes)/(1024*1024))
}

// Meta 对话关联文件时返回的精简信息
type Meta struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type FileType `json:"type"`
}

// Meta 返回文档精简信息
func (d *Document) Meta() Meta {
	return Meta{ID: d.ID, Name: d.Name, Type: d.Type}
}
