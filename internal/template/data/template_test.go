package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/template/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepoAddDedupAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates_methods.json")
	repo := NewFileRepo(path, logger.NewNop())
	assert.Empty(t, repo.List())

	e := &types.Entry{QuestionTemplate: "解释[概念]的含义", AnswerMethod: "先下定义，再举例"}
	assert.True(t, repo.Add(ctx, e))
	assert.False(t, repo.Add(ctx, &types.Entry{QuestionTemplate: e.QuestionTemplate, AnswerMethod: e.AnswerMethod}))
	assert.True(t, repo.Add(ctx, &types.Entry{QuestionTemplate: e.QuestionTemplate, AnswerMethod: "另一种方法"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "解释[概念]的含义"))

	reloaded := NewFileRepo(path, logger.NewNop())
	require.Len(t, reloaded.List(), 2)

	got, ok := reloaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, "另一种方法", got.AnswerMethod)

	_, ok = reloaded.Get(2)
	assert.False(t, ok)
	_, ok = reloaded.Get(-1)
	assert.False(t, ok)
}

func TestFileRepoBadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"not json", "{{{", 0},
		{"object instead of list", `{"question_template":"a"}`, 0},
		{"invalid entries dropped", `[{"question_template":"a","answer_method":"b"},{"question_template":"","answer_method":"x"},null]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "templates.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			assert.Len(t, NewFileRepo(path, logger.NewNop()).List(), tt.want)
		})
	}
}

func TestFileRepoListReturnsCopies(t *testing.T) {
	repo := NewFileRepo(filepath.Join(t.TempDir(), "t.json"), logger.NewNop())
	repo.Add(context.Background(), &types.Entry{QuestionTemplate: "q", AnswerMethod: "m"})

	list := repo.List()
	list[0].AnswerMethod = "changed"

	got, _ := repo.Get(0)
	assert.Equal(t, "m", got.AnswerMethod)
}
