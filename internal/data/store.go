package data

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// StoreOption Store 可选项
type StoreOption func(*Store)

// WithSaveFailureHook 每次保存失败时调用，用于计数
func WithSaveFailureHook(fn func()) StoreOption {
	return func(s *Store) {
		s.onSaveFailure = fn
	}
}

// Store 文档、会话与消息的内存存储。
// 所有集合由同一把读写锁保护，每次变更后整体写回 Persister。
// 对外返回的对象都是副本。
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    *logger.Logger

	onSaveFailure func()

	documents []*kbtypes.Document
	sessions  []*types.Session // 新建的会话在最前
	messages  map[string][]*types.Message
}

// NewStore 从 Persister 加载一次快照。快照损坏时以空存储启动。
func NewStore(ctx context.Context, persister Persister, lgr *logger.Logger, opts ...StoreOption) (*Store, error) {
	if lgr == nil {
		lgr = logger.L()
	}
	s := &Store{
		persister: persister,
		logger:    lgr.Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := persister.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSnapshot):
		s.logger.Warn("snapshot is corrupt, starting with empty data", zap.Error(err))
		snap = NewSnapshot()
	case err != nil:
		return nil, err
	}

	s.restore(snap)
	s.logger.Info("store loaded",
		zap.Int("documents", len(s.documents)),
		zap.Int("sessions", len(s.sessions)),
		zap.Int("conversations", len(s.messages)))
	return s, nil
}

// restore 校验外部 JSON 记录，丢弃不合法的条目
func (s *Store) restore(snap *Snapshot) {
	v := validator.New()

	s.documents = make([]*kbtypes.Document, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		if d == nil {
			continue
		}
		if err := v.Struct(d); err != nil {
			s.logger.Warn("dropping invalid document record", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		s.documents = append(s.documents, d)
	}

	s.sessions = make([]*types.Session, 0, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		if sess == nil {
			continue
		}
		if err := v.Struct(sess); err != nil {
			s.logger.Warn("dropping invalid session record", zap.String("id", sess.ID), zap.Error(err))
			continue
		}
		if sess.RelatedDocumentIDs == nil {
			sess.RelatedDocumentIDs = []string{}
		}
		s.sessions = append(s.sessions, sess)
	}

	s.messages = make(map[string][]*types.Message, len(snap.Messages))
	for sessionID, msgs := range snap.Messages {
		if sessionID == "" {
			continue
		}
		kept := make([]*types.Message, 0, len(msgs))
		for _, m := range msgs {
			if m == nil {
				continue
			}
			if err := v.Struct(m); err != nil {
				s.logger.Warn("dropping invalid message record",
					zap.String("session_id", sessionID), zap.String("id", m.ID), zap.Error(err))
				continue
			}
			kept = append(kept, m)
		}
		s.messages[sessionID] = kept
	}
}

// snapshot 需持有锁
func (s *Store) snapshot() *Snapshot {
	return &Snapshot{
		Documents: s.documents,
		Sessions:  s.sessions,
		Messages:  s.messages,
	}
}

// persist 需持有写锁。保存失败只记录，内存状态保持有效。
func (s *Store) persist(ctx context.Context) {
	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		s.logger.WithContext(ctx).Error("failed to save snapshot", zap.Error(err))
		if s.onSaveFailure != nil {
			s.onSaveFailure()
		}
	}
}

// ==================== Documents ====================

// ListDocuments 按上传顺序返回全部文档
func (s *Store) ListDocuments() []*kbtypes.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*kbtypes.Document, len(s.documents))
	for i, d := range s.documents {
		c := *d
		out[i] = &c
	}
	return out
}

// GetDocument 按 ID 查找文档
func (s *Store) GetDocument(id string) (*kbtypes.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.documents {
		if d.ID == id {
			c := *d
			return &c, true
		}
	}
	return nil, false
}

// DocumentsByIDs 按给定顺序返回存在的文档，未知 ID 被忽略
func (s *Store) DocumentsByIDs(ids []string) []*kbtypes.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*kbtypes.Document, 0, len(ids))
	for _, id := range ids {
		for _, d := range s.documents {
			if d.ID == id {
				c := *d
				out = append(out, &c)
				break
			}
		}
	}
	return out
}

// AddDocument 登记新文档
func (s *Store) AddDocument(ctx context.Context, doc *kbtypes.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *doc
	s.documents = append(s.documents, &c)
	s.persist(ctx)
}

// ReplaceDocuments 用对账结果整体替换文档列表
func (s *Store) ReplaceDocuments(ctx context.Context, docs []*kbtypes.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make([]*kbtypes.Document, len(docs))
	for i, d := range docs {
		c := *d
		s.documents[i] = &c
	}
	s.persist(ctx)
}

// ==================== Sessions ====================

// ListSessions 返回全部会话，最新创建的在前
func (s *Store) ListSessions() []*types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// GetSession 按 ID 查找会话
func (s *Store) GetSession(id string) (*types.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess := s.findSession(id); sess != nil {
		return sess.Clone(), true
	}
	return nil, false
}

func (s *Store) findSession(id string) *types.Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// CreateSession 新会话插入到列表最前
func (s *Store) CreateSession(ctx context.Context, sess *types.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append([]*types.Session{sess.Clone()}, s.sessions...)
	s.persist(ctx)
}

// SetRelatedDocuments 用本次请求的选择覆盖会话关联文档，会话不存在时返回 false
func (s *Store) SetRelatedDocuments(ctx context.Context, id string, documentIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findSession(id)
	if sess == nil {
		return false
	}
	sess.RelatedDocumentIDs = append([]string{}, documentIDs...)
	s.persist(ctx)
	return true
}

// TouchSession 更新最后活跃时间与关联文档，会话不存在时返回 false
func (s *Store) TouchSession(ctx context.Context, id string, at time.Time, documentIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findSession(id)
	if sess == nil {
		return false
	}
	sess.LastActive = at
	sess.RelatedDocumentIDs = append([]string{}, documentIDs...)
	s.persist(ctx)
	return true
}

// ==================== Messages ====================

// AppendMessage 向会话追加一条消息。会话记录不必存在。
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg *types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[sessionID] = append(s.messages[sessionID], msg.Clone())
	s.persist(ctx)
}

// ListMessages 按追加顺序返回会话消息
func (s *Store) ListMessages(sessionID string) []*types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	out := make([]*types.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
