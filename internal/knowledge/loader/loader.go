package loader

import (
	"context"
	"errors"
	"io"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// ErrUnsupportedFileType 没有可用的加载器
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Loader 文档加载器接口
type Loader interface {
	// Load 读取并提取纯文本
	Load(ctx context.Context, reader io.Reader) (*Document, error)

	// SupportedTypes 返回支持的文件类型
	SupportedTypes() []kbtypes.FileType
}

// Document 加载后的文档
type Document struct {
	Content  string
	Metadata map[string]interface{}
}
