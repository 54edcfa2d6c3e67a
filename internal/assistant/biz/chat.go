package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/export"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/llm"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/prompt"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	kbbiz "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/biz"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/citation"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// TitleLayout is appended to new session titles.
const TitleLayout = "2006-01-02 15:04"

// SessionRepo stores sessions and their messages.
type SessionRepo interface {
	ListSessions() []*types.Session
	GetSession(id string) (*types.Session, bool)
	CreateSession(ctx context.Context, sess *types.Session)
	SetRelatedDocuments(ctx context.Context, id string, documentIDs []string) bool
	TouchSession(ctx context.Context, id string, at time.Time, documentIDs []string) bool
	AppendMessage(ctx context.Context, sessionID string, msg *types.Message)
	ListMessages(sessionID string) []*types.Message
}

// DocumentLookup resolves document metadata for display.
type DocumentLookup interface {
	DocumentsByIDs(ids []string) []*kbtypes.Document
}

// Retriever selects context fragments for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, documentIDs []string) (*kbbiz.RetrieveResult, error)
}

// ChatObserver receives per-request outcomes, e.g. for metrics.
type ChatObserver interface {
	ObserveChat(mode string, retrieved int)
}

// SendRequest is one user turn.
type SendRequest struct {
	Message     string
	SessionID   string // empty starts a new session
	DocumentIDs []string
	Model       string
	Temperature *float32
}

// SendResult is the outcome of a turn. A model failure is reported through
// ModelErr while the turn itself is still recorded.
type SendResult struct {
	Answer          string
	Citations       []kbtypes.Citation
	SessionID       string
	NewSessionID    string
	NewSessionTitle string
	Mode            prompt.Mode
	ModelErr        *llm.ModelError
}

// SessionSummary is a session with its related documents resolved.
type SessionSummary struct {
	Session          *types.Session
	RelatedDocuments []*kbtypes.Document
}

// ChatUseCase drives the chat session lifecycle.
type ChatUseCase struct {
	sessions  SessionRepo
	documents DocumentLookup
	retriever Retriever
	completer llm.Completer
	observer  ChatObserver
	locks     *keyedLocker
	logger    *logger.Logger
	now       func() time.Time
}

// NewChatUseCase creates a chat use case. observer may be nil.
func NewChatUseCase(
	sessions SessionRepo,
	documents DocumentLookup,
	retriever Retriever,
	completer llm.Completer,
	observer ChatObserver,
	lgr *logger.Logger,
) *ChatUseCase {
	if lgr == nil {
		lgr = logger.L()
	}
	return &ChatUseCase{
		sessions:  sessions,
		documents: documents,
		retriever: retriever,
		completer: completer,
		observer:  observer,
		locks:     newKeyedLocker(),
		logger:    lgr.Named("chat"),
		now:       time.Now,
	}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return id.String(), nil
}

// Send records the user turn, asks the model and records its reply. Requests
// for the same session are serialized.
func (uc *ChatUseCase) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.New(apperrors.ErrChatEmptyMessage)
	}

	documentIDs := append([]string{}, req.DocumentIDs...)
	result := &SendResult{SessionID: req.SessionID}

	if result.SessionID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		result.SessionID = id
		result.NewSessionID = id
		result.NewSessionTitle = "新对话 " + uc.now().Format(TitleLayout)
	}

	unlock := uc.locks.Lock(result.SessionID)
	defer unlock()

	ctx = logger.WithSessionID(ctx, result.SessionID)
	log := uc.logger.WithContext(ctx)

	if result.NewSessionID != "" {
		now := uc.now()
		uc.sessions.CreateSession(ctx, &types.Session{
			ID:                 result.SessionID,
			Title:              result.NewSessionTitle,
			LastActive:         now,
			CreatedAt:          now,
			RelatedDocumentIDs: documentIDs,
		})
		log.Info("session created", zap.String("title", result.NewSessionTitle))
	} else if !uc.sessions.SetRelatedDocuments(ctx, result.SessionID, documentIDs) {
		log.Warn("message for unknown session, storing without a session record")
	}

	userMsgID, err := newID()
	if err != nil {
		return nil, err
	}
	uc.sessions.AppendMessage(ctx, result.SessionID, &types.Message{
		ID:        userMsgID,
		Sender:    types.SenderUser,
		Content:   req.Message,
		Timestamp: uc.now(),
	})

	var scored []kbtypes.ScoredChunk
	if len(documentIDs) > 0 {
		retrieved, err := uc.retriever.Retrieve(ctx, req.Message, documentIDs)
		if err != nil {
			log.Warn("retrieval failed, answering without references", zap.Error(err))
		} else {
			scored = retrieved.Scored
		}
	}

	blocks, citations := citation.Build(scored)
	p := prompt.Assemble(req.Message, documentIDs, blocks)
	result.Mode = p.Mode

	log.Info("calling model",
		zap.String("mode", string(p.Mode)),
		zap.Int("references", len(blocks)),
		zap.String("model", req.Model))

	completion, err := uc.completer.Complete(ctx, &llm.CompletionRequest{
		System:      p.System,
		User:        p.User,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		result.ModelErr = llm.Classify(err)
		result.Answer = result.ModelErr.Notice()
		log.Error("model call failed",
			zap.String("kind", string(result.ModelErr.Kind)),
			zap.Int("status", result.ModelErr.StatusCode),
			zap.Error(err))
	} else {
		result.Answer = completion.Text
		result.Citations = citations
	}

	aiMsgID, err := newID()
	if err != nil {
		return nil, err
	}
	uc.sessions.AppendMessage(ctx, result.SessionID, &types.Message{
		ID:        aiMsgID,
		Sender:    types.SenderAssistant,
		Content:   result.Answer,
		Timestamp: uc.now(),
		Citations: result.Citations,
	})
	uc.sessions.TouchSession(ctx, result.SessionID, uc.now(), documentIDs)

	if uc.observer != nil {
		uc.observer.ObserveChat(string(p.Mode), len(scored))
	}
	return result, nil
}

// ListSessions returns sessions, newest first, with their related documents.
func (uc *ChatUseCase) ListSessions() []*SessionSummary {
	sessions := uc.sessions.ListSessions()
	out := make([]*SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, &SessionSummary{
			Session:          s,
			RelatedDocuments: uc.documents.DocumentsByIDs(s.RelatedDocumentIDs),
		})
	}
	return out
}

// Messages returns a session's messages and the documents of its latest request.
// Unknown sessions yield no messages rather than an error.
func (uc *ChatUseCase) Messages(sessionID string) ([]*types.Message, []*kbtypes.Document) {
	msgs := uc.sessions.ListMessages(sessionID)
	var related []*kbtypes.Document
	if sess, ok := uc.sessions.GetSession(sessionID); ok {
		related = uc.documents.DocumentsByIDs(sess.RelatedDocumentIDs)
	}
	return msgs, related
}

// Export builds the transcript of a session.
func (uc *ChatUseCase) Export(_ context.Context, sessionID string) (*export.Transcript, error) {
	msgs := uc.sessions.ListMessages(sessionID)
	if len(msgs) == 0 {
		return nil, apperrors.New(apperrors.ErrChatNoMessages, sessionID)
	}

	title := export.DefaultTitle
	if sess, ok := uc.sessions.GetSession(sessionID); ok && sess.Title != "" {
		title = sess.Title
	}
	return export.Build(sessionID, title, msgs), nil
}
