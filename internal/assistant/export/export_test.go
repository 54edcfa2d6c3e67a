package export

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessages() []*types.Message {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	return []*types.Message{
		{ID: "m1", Sender: types.SenderUser, Content: "什么是光合作用？", Timestamp: at},
		{
			ID:        "m2",
			Sender:    types.SenderAssistant,
			Content:   "植物利用光能合成有机物[1]。",
			Timestamp: at.Add(time.Minute),
			Citations: []kbtypes.Citation{{Number: 1, DocumentName: "生物.pdf", Text: "光合作用是..."}},
		},
		{ID: "m3", Sender: types.SenderAssistant, Content: "无引用回答", Timestamp: at.Add(2 * time.Minute)},
	}
}

func TestBuildTranscript(t *testing.T) {
	tr := Build("s1", "生物复习", sampleMessages())

	want := strings.Join([]string{
		"对话历史 - 生物复习",
		"[2024-05-01 09:30] 您: 什么是光合作用？",
		"[2024-05-01 09:31] AI助手: 植物利用光能合成有机物[1]。",
		"--- 引用 ---",
		"[1] (来自 生物.pdf): 光合作用是...",
		"-----------",
		"[2024-05-01 09:32] AI助手: 无引用回答",
	}, "\n") + "\n"

	assert.Equal(t, want, tr.String())
	assert.Equal(t, LineHeading, tr.Lines[0].Kind)
	assert.False(t, tr.Lines[1].Markdown)
	assert.True(t, tr.Lines[2].Markdown)
}

func TestBuildDefaultTitle(t *testing.T) {
	tr := Build("s1", "", nil)
	require.Len(t, tr.Lines, 1)
	assert.Equal(t, "对话历史 - "+DefaultTitle, tr.Lines[0].Text)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"新对话 2024-05-01 09:30", "新对话_2024-05-01_09_30_对话历史.docx"},
		{"a/b\\c", "a_b_c_对话历史.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Transcript{Title: tt.title}).FileName("docx"))
		})
	}

	name := (&Transcript{Title: "???"}).FileName("html")
	assert.True(t, strings.HasPrefix(name, "chat_export_"))
	assert.True(t, strings.HasSuffix(name, "_对话历史.html"))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry("")

	r, ok := reg.Get("")
	require.True(t, ok)
	assert.Equal(t, FormatDOCX, r.Format())

	r, ok = reg.Get("HTML")
	require.True(t, ok)
	assert.Equal(t, FormatHTML, r.Format())

	_, ok = reg.Get("pdf")
	assert.False(t, ok)
}

func TestHTMLRenderer(t *testing.T) {
	msgs := sampleMessages()
	msgs[1].Content = "**重点**：<script>x</script>"

	var buf bytes.Buffer
	require.NoError(t, NewHTMLRenderer().Render(&buf, Build("s1", "生物 <复习>", msgs)))
	out := buf.String()

	assert.Contains(t, out, "<h1>对话历史 - 生物 &lt;复习&gt;</h1>")
	assert.Contains(t, out, "<strong>重点</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>什么是光合作用？</p>")
	assert.Contains(t, out, "[1] (来自 生物.pdf): 光合作用是...")
}

func TestDOCXRenderer(t *testing.T) {
	key := os.Getenv("NOTEBOOK_UNIOFFICE_LICENSE")
	if key == "" {
		t.Skip("NOTEBOOK_UNIOFFICE_LICENSE not set")
	}

	var buf bytes.Buffer
	require.NoError(t, NewDOCXRenderer(key).Render(&buf, Build("s1", "生物复习", sampleMessages())))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}
