package biz

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/storage"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu   sync.Mutex
	docs []*kbtypes.Document
}

func (r *memoryRepo) ListDocuments() []*kbtypes.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*kbtypes.Document(nil), r.docs...)
}

func (r *memoryRepo) GetDocument(id string) (*kbtypes.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

func (r *memoryRepo) DocumentsByIDs(ids []string) []*kbtypes.Document {
	var out []*kbtypes.Document
	for _, id := range ids {
		if d, ok := r.GetDocument(id); ok {
			out = append(out, d)
		}
	}
	return out
}

func (r *memoryRepo) AddDocument(_ context.Context, doc *kbtypes.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

func (r *memoryRepo) ReplaceDocuments(_ context.Context, docs []*kbtypes.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append([]*kbtypes.Document(nil), docs...)
}

func newDocumentUseCase(t *testing.T) (*DocumentUseCase, *memoryRepo, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	repo := &memoryRepo{}
	return NewDocumentUseCase(repo, store, 1024, logger.NewNop()), repo, store
}

func TestSanitizeFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		in   string
		want string
	}{
		{"my report.pdf", "my_report.pdf"},
		{"报告 (最终版).docx", "报告_最终版.docx"},
		{"  a  b  .txt", "a_b.txt"},
		{"lecture-01_notes.md", "lecture-01_notes.md"},
		{"@@@.md", "uploaded_file_1700000000123.md"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\笔记.txt`, "笔记.txt"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in, now))
		})
	}
}

func TestUploadAssignsUniqueNames(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newDocumentUseCase(t)

	var names []string
	for i := 0; i < 3; i++ {
		doc, err := uc.Upload(ctx, &UploadRequest{
			FileName: "a.txt",
			Size:     5,
			Content:  strings.NewReader("hello"),
		})
		require.NoError(t, err)
		names = append(names, doc.Name)
	}

	assert.Equal(t, []string{"a.txt", "a_1.txt", "a_2.txt"}, names)
	require.Len(t, repo.docs, 3)
	assert.Equal(t, kbtypes.FileTypeTxt, repo.docs[0].Type)
	assert.Equal(t, kbtypes.DefaultTypeTag, repo.docs[0].TypeTag)
	assert.Equal(t, int64(5), repo.docs[0].SizeBytes)
	assert.NotEqual(t, repo.docs[0].ID, repo.docs[1].ID)
}

func TestUploadKeepsTypeTag(t *testing.T) {
	uc, _, _ := newDocumentUseCase(t)

	doc, err := uc.Upload(context.Background(), &UploadRequest{
		FileName: "syllabus",
		TypeTag:  "课程大纲",
		Size:     1,
		Content:  strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "课程大纲", doc.TypeTag)
	assert.Equal(t, kbtypes.FileType("unknown"), doc.Type)
}

func TestUploadRejects(t *testing.T) {
	uc, repo, _ := newDocumentUseCase(t)

	tests := []struct {
		name string
		req  *UploadRequest
		code int
	}{
		{"nil request", nil, apperrors.ErrDocumentMissingFile},
		{"empty name", &UploadRequest{FileName: " ", Content: strings.NewReader("x")}, apperrors.ErrDocumentMissingFile},
		{"too large", &UploadRequest{FileName: "a.txt", Size: 4096, Content: strings.NewReader("x")}, apperrors.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Upload(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.code))
		})
	}
	assert.Empty(t, repo.docs)
}

func TestListReconcilesWithStorage(t *testing.T) {
	ctx := context.Background()
	uc, repo, store := newDocumentUseCase(t)

	repo.docs = []*kbtypes.Document{
		{ID: "kept-id", Name: "kept.txt", Type: kbtypes.FileTypeTxt, TypeTag: "lecture"},
		{ID: "gone-id", Name: "gone.txt", Type: kbtypes.FileTypeTxt, TypeTag: "lecture"},
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "kept.txt"), []byte("k"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "new.md"), []byte("# n"), 0o644))

	docs, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "kept-id", docs[0].ID)
	assert.Equal(t, "lecture", docs[0].TypeTag)

	assert.Equal(t, "new.md", docs[1].Name)
	assert.Equal(t, kbtypes.FileTypeMd, docs[1].Type)
	assert.Equal(t, kbtypes.DefaultTypeTag, docs[1].TypeTag)
	assert.Equal(t, int64(3), docs[1].SizeBytes)
	assert.NotEmpty(t, docs[1].ID)

	_, ok := repo.GetDocument("gone-id")
	assert.False(t, ok)
	assert.Len(t, repo.ListDocuments(), 2)
}

func TestOpenAndGet(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newDocumentUseCase(t)

	doc, err := uc.Upload(ctx, &UploadRequest{FileName: "a.txt", Size: 2, Content: strings.NewReader("hi")})
	require.NoError(t, err)

	got, err := uc.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Name, got.Name)

	rc, info, err := uc.Open(ctx, "a.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "hi", string(body))
	assert.Equal(t, int64(2), info.Size)

	_, _, err = uc.Open(ctx, "missing.txt")
	assert.True(t, apperrors.Is(err, apperrors.ErrDocumentNotFound))

	_, err = uc.Get("missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrDocumentNotFound))
}
