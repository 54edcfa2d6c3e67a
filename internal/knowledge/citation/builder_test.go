package citation

import (
	"fmt"
	"testing"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "empty", count: 0},
		{name: "single", count: 1},
		{name: "full context", count: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var scored []kbtypes.ScoredChunk
			for i := 0; i < tt.count; i++ {
				scored = append(scored, kbtypes.ScoredChunk{
					Chunk: kbtypes.Chunk{
						ChunkID:      kbtypes.ChunkID(i),
						Text:         fmt.Sprintf("片段内容 %d", i),
						DocumentID:   "d1",
						DocumentName: "notes.md",
					},
					Score: tt.count - i,
				})
			}

			blocks, citations := Build(scored)
			require.Len(t, blocks, tt.count)
			require.Len(t, citations, tt.count)

			for i := range blocks {
				assert.Equal(t, i+1, blocks[i].Number)
				assert.Equal(t, blocks[i].Number, citations[i].Number)
				assert.Equal(t, blocks[i].Text, citations[i].Text)
				assert.Equal(t, blocks[i].DocumentName, citations[i].DocumentName)
				assert.Equal(t, scored[i].Chunk.Text, blocks[i].Text)
			}
		})
	}
}

func TestPromptBlockTag(t *testing.T) {
	assert.Equal(t, "[3]", PromptBlock{Number: 3}.Tag())
}
