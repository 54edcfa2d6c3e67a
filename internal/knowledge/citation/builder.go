package citation

import (
	"fmt"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// PromptBlock 放入提示词的一段编号参考资料
type PromptBlock struct {
	Number       int
	DocumentName string
	Text         string
}

// Tag 引用标记，形如 [3]
func (b PromptBlock) Tag() string {
	return fmt.Sprintf("[%d]", b.Number)
}

// Build 按输入顺序从 1 开始编号，生成提示块和持久化引用；两者逐项一一对应
func Build(scored []kbtypes.ScoredChunk) ([]PromptBlock, []kbtypes.Citation) {
	blocks := make([]PromptBlock, 0, len(scored))
	citations := make([]kbtypes.Citation, 0, len(scored))

	for i, sc := range scored {
		n := i + 1
		blocks = append(blocks, PromptBlock{
			Number:       n,
			DocumentName: sc.Chunk.DocumentName,
			Text:         sc.Chunk.Text,
		})
		citations = append(citations, kbtypes.Citation{
			Number:       n,
			DocumentName: sc.Chunk.DocumentName,
			Text:         sc.Chunk.Text,
		})
	}

	return blocks, citations
}
