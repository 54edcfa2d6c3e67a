package types

import "time"

// Session is a chat conversation. Title is fixed at creation; RelatedDocumentIDs
// always reflects the most recent request only.
type Session struct {
	ID                 string    `json:"id" validate:"required"`
	Title              string    `json:"title"`
	LastActive         time.Time `json:"last_active"`
	CreatedAt          time.Time `json:"created_at"`
	RelatedDocumentIDs []string  `json:"related_file_ids"`
}

// Clone returns a deep copy safe to hand out of the store.
func (s *Session) Clone() *Session {
	c := *s
	c.RelatedDocumentIDs = append([]string(nil), s.RelatedDocumentIDs...)
	return &c
}
