package service

import (
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/biz"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	kbservice "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/service"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// TimeLayout formats timestamps in API responses.
const TimeLayout = "2006-01-02 15:04"

// ModelSettings are per-request model overrides.
type ModelSettings struct {
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message        string        `json:"message"`
	ChatID         string        `json:"chatId"`
	RelatedFileIDs []string      `json:"relatedFileIds"`
	ModelSettings  ModelSettings `json:"modelSettings"`
}

// AIResponse is the assistant reply with its citations.
type AIResponse struct {
	Text      string             `json:"text"`
	Citations []kbtypes.Citation `json:"citations"`
}

// ChatResponse is returned for every recorded turn, including model failures.
type ChatResponse struct {
	AIResponse   AIResponse `json:"aiResponse"`
	ChatID       string     `json:"chatId"`
	NewChatID    string     `json:"newChatId,omitempty"`
	NewChatTitle string     `json:"newChatTitle,omitempty"`
	Mode         string     `json:"mode"`
}

// SessionResponse is one entry of the chat history list.
type SessionResponse struct {
	ID               string                        `json:"id"`
	Title            string                        `json:"title"`
	LastActive       string                        `json:"lastActive"`
	RelatedFileIDs   []string                      `json:"related_file_ids"`
	RelatedFilesMeta []*kbservice.DocumentResponse `json:"related_files_meta"`
}

// MessageResponse is one stored message.
type MessageResponse struct {
	ID        string             `json:"id"`
	Sender    types.Sender       `json:"sender"`
	Content   string             `json:"content"`
	Timestamp string             `json:"timestamp"`
	Citations []kbtypes.Citation `json:"citations_data"`
}

// MessagesResponse is the body of GET /chat/:id/messages.
type MessagesResponse struct {
	Messages         []*MessageResponse            `json:"messages"`
	RelatedFilesMeta []*kbservice.DocumentResponse `json:"related_files_meta"`
}

func toChatResponse(res *biz.SendResult) *ChatResponse {
	citations := res.Citations
	if citations == nil {
		citations = []kbtypes.Citation{}
	}
	return &ChatResponse{
		AIResponse:   AIResponse{Text: res.Answer, Citations: citations},
		ChatID:       res.SessionID,
		NewChatID:    res.NewSessionID,
		NewChatTitle: res.NewSessionTitle,
		Mode:         string(res.Mode),
	}
}

func toSessionResponse(s *biz.SessionSummary) *SessionResponse {
	ids := s.Session.RelatedDocumentIDs
	if ids == nil {
		ids = []string{}
	}
	return &SessionResponse{
		ID:               s.Session.ID,
		Title:            s.Session.Title,
		LastActive:       s.Session.LastActive.Local().Format(TimeLayout),
		RelatedFileIDs:   ids,
		RelatedFilesMeta: kbservice.ToDocumentResponses(s.RelatedDocuments),
	}
}

func toMessageResponses(msgs []*types.Message) []*MessageResponse {
	out := make([]*MessageResponse, len(msgs))
	for i, m := range msgs {
		citations := m.Citations
		if citations == nil {
			citations = []kbtypes.Citation{}
		}
		out[i] = &MessageResponse{
			ID:        m.ID,
			Sender:    m.Sender,
			Content:   m.Content,
			Timestamp: m.Timestamp.Local().Format(TimeLayout),
			Citations: citations,
		}
	}
	return out
}
