package prompt

import (
	"strings"
	"testing"

	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/citation"
	"github.com/stretchr/testify/assert"
)

func TestAssembleModes(t *testing.T) {
	blocks := []citation.PromptBlock{
		{Number: 1, DocumentName: "bio.pdf", Text: "光合作用发生在叶绿体中。"},
		{Number: 2, DocumentName: "notes.md", Text: "光反应产生氧气。"},
	}

	tests := []struct {
		name     string
		selected []string
		blocks   []citation.PromptBlock
		want     Mode
	}{
		{name: "grounded", selected: []string{"d1"}, blocks: blocks, want: ModeGrounded},
		{name: "no match", selected: []string{"d1"}, blocks: nil, want: ModeNoMatch},
		{name: "unselected", selected: nil, blocks: nil, want: ModeUnselected},
		{name: "blocks without selection stay unselected", selected: nil, blocks: blocks, want: ModeUnselected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Assemble("什么是光合作用", tt.selected, tt.blocks)
			assert.Equal(t, tt.want, p.Mode)
			assert.Equal(t, "用户问题：什么是光合作用", p.User)
			assert.True(t, strings.HasPrefix(p.System, systemPrefix))
		})
	}
}

func TestAssembleGroundedContent(t *testing.T) {
	blocks := []citation.PromptBlock{
		{Number: 1, DocumentName: "bio.pdf", Text: "光合作用发生在叶绿体中。"},
		{Number: 2, DocumentName: "notes.md", Text: "光反应产生氧气。"},
	}

	p := Assemble("光合作用在哪里发生", []string{"d1", "d2"}, blocks)

	assert.Contains(t, p.System, "### 参考资料：文档 'bio.pdf'，片段 [1]\n```text\n光合作用发生在叶绿体中。\n```")
	assert.Contains(t, p.System, "### 参考资料：文档 'notes.md'，片段 [2]\n```text\n光反应产生氧气。\n```")
	assert.Contains(t, p.System, RefusalSentence)
	assert.Less(t, strings.Index(p.System, "片段 [1]"), strings.Index(p.System, "片段 [2]"))
}

func TestAssembleUngroundedContent(t *testing.T) {
	noMatch := Assemble("q", []string{"d1"}, nil)
	assert.Contains(t, noMatch.System, "无法从选择的文件中找到")
	assert.NotContains(t, noMatch.System, "### 参考资料")

	unselected := Assemble("q", nil, nil)
	assert.Contains(t, unselected.System, "未选择任何参考资料")
	assert.NotContains(t, unselected.System, RefusalSentence)
}
