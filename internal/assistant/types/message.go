package types

import (
	"time"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Label returns the display name used in transcripts.
func (s Sender) Label() string {
	if s == SenderUser {
		return "您"
	}
	return "AI助手"
}

// Message is an immutable turn in a session.
type Message struct {
	ID        string             `json:"id" validate:"required"`
	Sender    Sender             `json:"sender" validate:"oneof=user assistant"`
	Content   string             `json:"text"`
	Timestamp time.Time          `json:"timestamp"`
	Citations []kbtypes.Citation `json:"citations,omitempty" validate:"dive"`
}

// Clone returns a deep copy safe to hand out of the store.
func (m *Message) Clone() *Message {
	c := *m
	c.Citations = append([]kbtypes.Citation(nil), m.Citations...)
	return &c
}
