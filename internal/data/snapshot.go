package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// ErrCorruptSnapshot 快照内容无法解析。持久化层在返回该错误前已把原始内容备份。
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot 会话存储的完整持久化形态
type Snapshot struct {
	Documents []*kbtypes.Document         `json:"files"`
	Sessions  []*types.Session            `json:"chat_history"`
	Messages  map[string][]*types.Message `json:"chat_messages"`
}

// NewSnapshot 空快照
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Documents: []*kbtypes.Document{},
		Sessions:  []*types.Session{},
		Messages:  map[string][]*types.Message{},
	}
}

// Persister 快照的读写后端。Load 在快照不存在时返回空快照。
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

func encodeSnapshot(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	snap := NewSnapshot()
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Documents == nil {
		snap.Documents = []*kbtypes.Document{}
	}
	if snap.Sessions == nil {
		snap.Sessions = []*types.Session{}
	}
	if snap.Messages == nil {
		snap.Messages = map[string][]*types.Message{}
	}
	return snap, nil
}
