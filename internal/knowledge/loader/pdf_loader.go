package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// PDFLoader 基于 go-fitz (MuPDF) 的 PDF 文本提取
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load 逐页提取文本。提取失败的页面和空白页（扫描件）不输出，只计数。
func (l *PDFLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc, err := fitz.NewFromMemory(raw)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	var (
		sb      strings.Builder
		failed  int
		blank   int
		written int
	)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.Text(i)
		if err != nil {
			failed++
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			blank++
			continue
		}
		if written > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
		written++
	}

	return &Document{
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"loader":       "pdf",
			"page_count":   pages,
			"failed_pages": failed,
			"blank_pages":  blank,
		},
	}, nil
}

func (l *PDFLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypePdf}
}
