package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/tidwall/gjson"
)

// JSONLoader JSON 文件加载器，展开为 "键: 值" 形式的可读文本
type JSONLoader struct{}

// NewJSONLoader 创建 JSON 加载器
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load 加载 JSON 内容；格式非法时按原文本返回
func (l *JSONLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read json content: %w", err)
	}

	if !gjson.ValidBytes(content) {
		return &Document{
			Content:  string(content),
			Metadata: map[string]interface{}{"loader": "json", "valid": false},
		}, nil
	}

	var sb strings.Builder
	root := gjson.ParseBytes(content)
	switch {
	case root.IsArray():
		for i, item := range root.Array() {
			writeJSONValue(&sb, fmt.Sprintf("[%d]", i), item, 0)
		}
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool {
			writeJSONValue(&sb, k.String(), v, 0)
			return true
		})
	default:
		sb.WriteString(root.String())
	}

	return &Document{
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"loader":        "json",
			"valid":         true,
			"original_size": len(content),
		},
	}, nil
}

func writeJSONValue(sb *strings.Builder, key string, v gjson.Result, depth int) {
	indent := strings.Repeat("  ", depth)

	switch {
	case v.IsArray():
		fmt.Fprintf(sb, "%s%s:\n", indent, key)
		for i, item := range v.Array() {
			writeJSONValue(sb, fmt.Sprintf("[%d]", i), item, depth+1)
		}
	case v.IsObject():
		fmt.Fprintf(sb, "%s%s:\n", indent, key)
		v.ForEach(func(k, item gjson.Result) bool {
			writeJSONValue(sb, k.String(), item, depth+1)
			return true
		})
	default:
		fmt.Fprintf(sb, "%s%s: %s\n", indent, key, v.String())
	}
}

// SupportedTypes 返回支持的文件类型
func (l *JSONLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeJson}
}
