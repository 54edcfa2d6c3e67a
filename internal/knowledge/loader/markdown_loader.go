package loader

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/russross/blackfriday/v2"
)

var (
	reScriptStyle = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	reLineBreak   = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</tr>|</pre>`)
	reHeadingEnd  = regexp.MustCompile(`(?i)</h[1-6]>`)
	reTag         = regexp.MustCompile(`<[^>]+>`)
	reManyBreaks  = regexp.MustCompile(`\n{3,}`)
)

// MarkdownLoader Markdown 加载器，渲染后去掉标记得到纯文本
type MarkdownLoader struct{}

// NewMarkdownLoader 创建 Markdown 加载器
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// Load 加载 Markdown 内容
func (l *MarkdownLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown content: %w", err)
	}

	rendered := blackfriday.Run(content)

	return &Document{
		Content: htmlToPlainText(string(rendered)),
		Metadata: map[string]interface{}{
			"loader":          "markdown",
			"original_format": "markdown",
		},
	}, nil
}

// htmlToPlainText 段落和标题转为换行，去除标签并解码实体
func htmlToPlainText(s string) string {
	s = reScriptStyle.ReplaceAllString(s, "")
	s = reLineBreak.ReplaceAllString(s, "\n")
	s = reHeadingEnd.ReplaceAllString(s, "\n\n")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = reManyBreaks.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	return strings.TrimSpace(s)
}

// SupportedTypes 返回支持的文件类型
func (l *MarkdownLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeMd, kbtypes.FileTypeMarkdown}
}
