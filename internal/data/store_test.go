package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), NewFilePersister(path), logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestStoreEmptyWhenMissing(t *testing.T) {
	s := newFileStore(t, filepath.Join(t.TempDir(), "mock_data.json"))

	assert.Empty(t, s.ListDocuments())
	assert.Empty(t, s.ListSessions())
	assert.Empty(t, s.ListMessages("nope"))
}

func TestStoreWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock_data.json")
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	s := newFileStore(t, path)
	s.AddDocument(ctx, &kbtypes.Document{ID: "d1", Name: "bio.txt", Type: kbtypes.FileTypeTxt, SizeBytes: 10, TypeTag: "notes"})
	s.CreateSession(ctx, &types.Session{ID: "s1", Title: "first", CreatedAt: now, LastActive: now})
	s.CreateSession(ctx, &types.Session{ID: "s2", Title: "second", CreatedAt: now, LastActive: now})
	s.AppendMessage(ctx, "s1", &types.Message{ID: "m1", Sender: types.SenderUser, Content: "什么是光合作用", Timestamp: now})
	s.AppendMessage(ctx, "s1", &types.Message{
		ID: "m2", Sender: types.SenderAssistant, Content: "答案[1]", Timestamp: now,
		Citations: []kbtypes.Citation{{Number: 1, DocumentName: "bio.txt", Text: "光合作用是..."}},
	})

	reloaded := newFileStore(t, path)

	docs := reloaded.ListDocuments()
	require.Len(t, docs, 1)
	assert.Equal(t, "notes", docs[0].TypeTag)

	sessions := reloaded.ListSessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID, "newest session first")
	assert.Equal(t, "s1", sessions[1].ID)

	msgs := reloaded.ListMessages("s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, 1, msgs[1].Citations[0].Number)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chat_history"`)
	assert.Contains(t, string(raw), `"chat_messages"`)
	assert.Contains(t, string(raw), "什么是光合作用", "non-ascii is written verbatim")
}

func TestStoreCorruptSnapshotIsBackedUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mock_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := newFileStore(t, path)
	assert.Empty(t, s.ListSessions())

	matches, err := filepath.Glob(path + ".bak_*")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStoreDropsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"files": [{"id": "d1", "name": "a.txt"}, {"id": "", "name": "b.txt"}],
		"chat_history": [{"id": "s1", "title": "t"}, {"title": "no id"}],
		"chat_messages": {
			"s1": [
				{"id": "m1", "sender": "user", "text": "hi"},
				{"id": "m2", "sender": "robot", "text": "?"},
				{"id": "m3", "sender": "assistant", "text": "x", "citations": [{"id": 0, "doc_name": "a", "text": "t"}]}
			]
		}
	}`), 0o644))

	s := newFileStore(t, path)

	assert.Len(t, s.ListDocuments(), 1)
	require.Len(t, s.ListSessions(), 1)
	assert.NotNil(t, s.ListSessions()[0].RelatedDocumentIDs)
	msgs := s.ListMessages("s1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestStoreSessionUpdates(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, filepath.Join(t.TempDir(), "mock_data.json"))
	s.CreateSession(ctx, &types.Session{ID: "s1", RelatedDocumentIDs: []string{"a", "b"}})

	assert.True(t, s.SetRelatedDocuments(ctx, "s1", []string{"c"}))
	got, ok := s.GetSession("s1")
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, got.RelatedDocumentIDs)

	at := time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)
	assert.True(t, s.TouchSession(ctx, "s1", at, nil))
	got, _ = s.GetSession("s1")
	assert.Equal(t, at, got.LastActive)
	assert.Empty(t, got.RelatedDocumentIDs)

	assert.False(t, s.SetRelatedDocuments(ctx, "missing", []string{"x"}))
	assert.False(t, s.TouchSession(ctx, "missing", at, nil))
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, filepath.Join(t.TempDir(), "mock_data.json"))
	s.CreateSession(ctx, &types.Session{ID: "s1", RelatedDocumentIDs: []string{"a"}})
	s.AppendMessage(ctx, "s1", &types.Message{ID: "m1", Sender: types.SenderUser, Content: "hi"})

	sess, _ := s.GetSession("s1")
	sess.RelatedDocumentIDs[0] = "mutated"
	msgs := s.ListMessages("s1")
	msgs[0].Content = "mutated"

	again, _ := s.GetSession("s1")
	assert.Equal(t, "a", again.RelatedDocumentIDs[0])
	assert.Equal(t, "hi", s.ListMessages("s1")[0].Content)
}

func TestStoreDocumentsByIDs(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, filepath.Join(t.TempDir(), "mock_data.json"))
	s.ReplaceDocuments(ctx, []*kbtypes.Document{{ID: "a", Name: "a.txt"}, {ID: "b", Name: "b.txt"}})

	docs := s.DocumentsByIDs([]string{"b", "zzz", "a"})
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)

	_, ok := s.GetDocument("zzz")
	assert.False(t, ok)
}

type failingPersister struct{}

func (failingPersister) Load(context.Context) (*Snapshot, error) { return NewSnapshot(), nil }
func (failingPersister) Save(context.Context, *Snapshot) error   { return errors.New("disk full") }

func TestStoreSaveFailureKeepsState(t *testing.T) {
	failures := 0
	s, err := NewStore(context.Background(), failingPersister{}, logger.NewNop(),
		WithSaveFailureHook(func() { failures++ }))
	require.NoError(t, err)

	s.AppendMessage(context.Background(), "s1", &types.Message{ID: "m1", Sender: types.SenderUser})
	assert.Len(t, s.ListMessages("s1"), 1)
	assert.Equal(t, 1, failures)
}

func TestStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, filepath.Join(t.TempDir(), "mock_data.json"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendMessage(ctx, "s1", &types.Message{ID: "m", Sender: types.SenderUser})
		}()
	}
	wg.Wait()

	assert.Len(t, s.ListMessages("s1"), 20)
}
