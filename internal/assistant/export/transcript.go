package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
)

// TimeLayout formats message timestamps in transcripts.
const TimeLayout = "2006-01-02 15:04"

// DefaultTitle is used when the session record is missing.
const DefaultTitle = "Chat History"

// LineKind tells renderers how to style a line.
type LineKind int

const (
	LineHeading LineKind = iota
	LineTurn
	LineCitationHeader
	LineCitation
	LineCitationFooter
)

// Line is one rendered line. For turns, Label holds the "[time] sender: " prefix
// and Text the message content.
type Line struct {
	Kind     LineKind
	Label    string
	Text     string
	Markdown bool
}

// Transcript is a session rendered into ordered lines, independent of output format.
type Transcript struct {
	SessionID string
	Title     string
	Lines     []Line
}

// Build turns a session's messages into a transcript.
func Build(sessionID, title string, messages []*types.Message) *Transcript {
	if title == "" {
		title = DefaultTitle
	}

	t := &Transcript{SessionID: sessionID, Title: title}
	t.Lines = append(t.Lines, Line{Kind: LineHeading, Text: "对话历史 - " + title})

	for _, msg := range messages {
		t.Lines = append(t.Lines, Line{
			Kind:     LineTurn,
			Label:    fmt.Sprintf("[%s] %s: ", msg.Timestamp.Local().Format(TimeLayout), msg.Sender.Label()),
			Text:     msg.Content,
			Markdown: msg.Sender == types.SenderAssistant,
		})

		if msg.Sender != types.SenderAssistant || len(msg.Citations) == 0 {
			continue
		}
		t.Lines = append(t.Lines, Line{Kind: LineCitationHeader, Text: "--- 引用 ---"})
		for _, c := range msg.Citations {
			t.Lines = append(t.Lines, Line{
				Kind: LineCitation,
				Text: fmt.Sprintf("[%d] (来自 %s): %s", c.Number, c.DocumentName, c.Text),
			})
		}
		t.Lines = append(t.Lines, Line{Kind: LineCitationFooter, Text: "-----------"})
	}
	return t
}

// String renders the transcript as plain text, one line per entry.
func (t *Transcript) String() string {
	var sb strings.Builder
	for _, l := range t.Lines {
		sb.WriteString(l.Label)
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

var unsafeTitleChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// FileName is the download name for the given extension, e.g. "docx".
func (t *Transcript) FileName(ext string) string {
	safe := strings.Trim(unsafeTitleChars.ReplaceAllString(t.Title, "_"), "._")
	if safe == "" {
		safe = fmt.Sprintf("chat_export_%d", time.Now().Unix())
	}
	return fmt.Sprintf("%s_对话历史.%s", safe, ext)
}
