package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/unidoc/unioffice/document"
)

// DOCXLoader Word 文档加载器（unioffice），需要先调用 office.SetLicense
type DOCXLoader struct{}

func NewDOCXLoader() *DOCXLoader {
	return &DOCXLoader{}
}

// Load 正文段落每段一行；表格逐行输出，单元格之间用制表符分隔
func (l *DOCXLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := document.Read(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	paragraphs := doc.Paragraphs()
	for _, p := range paragraphs {
		sb.WriteString(paragraphText(p))
		sb.WriteByte('\n')
	}

	tables := doc.Tables()
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, row := range table.Rows() {
			cells := row.Cells()
			texts := make([]string, 0, len(cells))
			for _, cell := range cells {
				var parts []string
				for _, p := range cell.Paragraphs() {
					if t := strings.TrimSpace(paragraphText(p)); t != "" {
						parts = append(parts, t)
					}
				}
				texts = append(texts, strings.Join(parts, " "))
			}
			sb.WriteString(strings.Join(texts, "\t"))
			sb.WriteByte('\n')
		}
	}

	return &Document{
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"loader":          "docx",
			"paragraph_count": len(paragraphs),
			"table_count":     len(tables),
		},
	}, nil
}

func paragraphText(p document.Paragraph) string {
	var sb strings.Builder
	for _, run := range p.Runs() {
		sb.WriteString(run.Text())
	}
	return sb.String()
}

func (l *DOCXLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeDocx}
}
