package loader

import (
	"context"
	"strings"
	"testing"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		fileType kbtypes.FileType
		want     string
		wantErr  bool
	}{
		{kbtypes.FileTypeTxt, "*loader.TextLoader", false},
		{kbtypes.FileTypePy, "*loader.TextLoader", false},
		{kbtypes.FileTypeMd, "*loader.MarkdownLoader", false},
		{kbtypes.FileTypeJson, "*loader.JSONLoader", false},
		{kbtypes.FileTypePdf, "*loader.PDFLoader", false},
		{kbtypes.FileTypeDocx, "*loader.DOCXLoader", false},
		{kbtypes.FileType("pptx"), "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.fileType), func(t *testing.T) {
			l, err := f.CreateLoader(tt.fileType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFileType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, typeName(l))
		})
	}

	assert.Contains(t, f.SupportedTypes(), kbtypes.FileTypeCsv)
}

func TestTextLoader(t *testing.T) {
	doc, err := NewTextLoader().Load(context.Background(), strings.NewReader("第一行\n第二行"))
	require.NoError(t, err)
	assert.Equal(t, "第一行\n第二行", doc.Content)

	doc, err = NewTextLoader().Load(context.Background(), strings.NewReader("ok\xff"))
	require.NoError(t, err)
	assert.Equal(t, "ok�", doc.Content)
}

func TestMarkdownLoader(t *testing.T) {
	md := "# 光合作用\n\n植物利用**光能**把二氧化碳和水转化为有机物。\n\n- 叶绿体\n- 氧气 & 葡萄糖\n"

	doc, err := NewMarkdownLoader().Load(context.Background(), strings.NewReader(md))
	require.NoError(t, err)

	assert.NotContains(t, doc.Content, "<")
	assert.NotContains(t, doc.Content, "**")
	assert.True(t, strings.HasPrefix(doc.Content, "光合作用"))
	assert.Contains(t, doc.Content, "植物利用光能把二氧化碳和水转化为有机物。")
	assert.Contains(t, doc.Content, "叶绿体")
	assert.Contains(t, doc.Content, "氧气 & 葡萄糖")
}

func TestJSONLoader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "object",
			input: `{"title":"笔记","tags":["a","b"],"meta":{"pages":3}}`,
			want:  []string{"title: 笔记\n", "tags:\n  [0]: a\n  [1]: b\n", "meta:\n  pages: 3\n"},
		},
		{
			name:  "array",
			input: `[1,"two"]`,
			want:  []string{"[0]: 1\n", "[1]: two\n"},
		},
		{
			name:  "invalid kept as text",
			input: `{"broken":`,
			want:  []string{`{"broken":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewJSONLoader().Load(context.Background(), strings.NewReader(tt.input))
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, doc.Content, w)
			}
		})
	}
}

func typeName(l Loader) string {
	switch l.(type) {
	case *TextLoader:
		return "*loader.TextLoader"
	case *MarkdownLoader:
		return "*loader.MarkdownLoader"
	case *JSONLoader:
		return "*loader.JSONLoader"
	case *PDFLoader:
		return "*loader.PDFLoader"
	case *DOCXLoader:
		return "*loader.DOCXLoader"
	}
	return ""
}
