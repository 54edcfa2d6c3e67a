package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenCounter estimates prompt size with tiktoken. The encoding is loaded
// lazily on first use; when it cannot be loaded the rune count is returned.
type TokenCounter struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	logger   *logger.Logger
}

// NewTokenCounter creates a counter for the named encoding.
func NewTokenCounter(encoding string, lgr *logger.Logger) *TokenCounter {
	if lgr == nil {
		lgr = logger.L()
	}
	return &TokenCounter{encoding: encoding, logger: lgr}
}

// Count returns the estimated token count of text.
func (t *TokenCounter) Count(text string) int {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.logger.Warn("tiktoken encoding unavailable, falling back to rune count",
				zap.String("encoding", t.encoding), zap.Error(err))
			return
		}
		t.enc = enc
	})

	if t.enc == nil {
		return utf8.RuneCountInString(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}
