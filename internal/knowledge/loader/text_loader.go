package loader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// TextLoader 纯文本加载器（源码、日志、网页源文件等按原样读取）
type TextLoader struct{}

// NewTextLoader 创建纯文本加载器
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load 读取 UTF-8 文本，非法字节替换为 U+FFFD
func (l *TextLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read text content: %w", err)
	}

	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}

	return &Document{
		Content:  text,
		Metadata: map[string]interface{}{"loader": "text"},
	}, nil
}

// SupportedTypes 返回支持的文件类型
func (l *TextLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{
		kbtypes.FileTypeTxt,
		kbtypes.FileTypeLog,
		kbtypes.FileTypePy,
		kbtypes.FileTypeJs,
		kbtypes.FileTypeCss,
		kbtypes.FileTypeHtml,
		kbtypes.FileTypeXml,
		kbtypes.FileTypeCsv,
	}
}
