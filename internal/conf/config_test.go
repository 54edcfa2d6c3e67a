package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 100, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 8, cfg.RAG.MaxResults)
	assert.True(t, cfg.RAG.Segment.HMM)
	assert.Equal(t, "deepseek-chat", cfg.LLM.DefaultModel)
	assert.Equal(t, []string{"deepseek-chat", "deepseek-coder"}, cfg.LLM.AllowedModels)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "mock_data.json", cfg.Store.File)
	assert.Equal(t, "templates_methods.json", cfg.Templates.File)
	assert.Equal(t, 8000, cfg.Templates.MaxDocumentRunes)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
rag:
  chunk_size: 400
  chunk_overlap: 50
llm:
  timeout: 10s
store:
  backend: file
  file: /tmp/notebook.json
`), 0o644))

	t.Setenv("NOTEBOOK_SERVER_PORT", "9090")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 400, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "/tmp/notebook.json", cfg.Store.File)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "overlap not below size", yaml: "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{name: "unknown store backend", yaml: "store:\n  backend: sqlite\n"},
		{name: "unknown storage backend", yaml: "storage:\n  backend: s3\n"},
		{name: "minio without credentials", yaml: "storage:\n  backend: minio\n"},
		{name: "bad log level", yaml: "log:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
