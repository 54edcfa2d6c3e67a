package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"), logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestLocalStorePutOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	info, err := s.Put(ctx, "笔记.txt", strings.NewReader("你好"), -1, "")
	require.NoError(t, err)
	assert.Equal(t, "笔记.txt", info.Name)
	assert.Equal(t, int64(len("你好")), info.Size)

	rc, got, err := s.Open(ctx, "笔记.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "你好", string(body))
	assert.Equal(t, info.Size, got.Size)
}

func TestLocalStoreRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape.txt", "sub/a.txt", ".hidden"} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Put(ctx, name, strings.NewReader("x"), 1, "")
			assert.ErrorIs(t, err, ErrFileNotFound)
		})
	}
}

func TestLocalStoreStatMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Stat(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)

	ok, err := Exists(ctx, s, "missing.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Open(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStoreList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "b.md"), []byte("# b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "a.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".DS_Store"), []byte{0}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "nested"), 0o755))

	files, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, "b.md", files[1].Name)
	assert.Equal(t, "application/pdf", files[0].ContentType)

	ok, err := Exists(ctx, s, "a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}
