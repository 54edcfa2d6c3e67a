package types

import "fmt"

// Chunk 检索用的文档片段，每次请求重新生成，不落盘
type Chunk struct {
	ChunkID      string `json:"chunk_id"` // chunk_<n>，文档内从 1 开始
	Text         string `json:"text"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
}

// ChunkID 生成文档内第 index 个（从 0 开始）片段的 ID
func ChunkID(index int) string {
	return fmt.Sprintf("chunk_%d", index+1)
}

// ScoredChunk 带重叠分数的片段
type ScoredChunk struct {
	Chunk Chunk `json:"chunk"`
	Score int   `json:"score"`
}

// Citation 助手消息上保存的引用
type Citation struct {
	Number       int    `json:"id" validate:"gte=1"`
	DocumentName string `json:"doc_name"`
	Text         string `json:"text"`
}
