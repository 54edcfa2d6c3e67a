package prompt

import (
	"strings"

	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/citation"
)

// Mode tells which of the three prompt shapes was produced.
type Mode string

const (
	// ModeGrounded means documents were selected and at least one fragment matched.
	ModeGrounded Mode = "grounded"
	// ModeNoMatch means documents were selected but nothing matched the question.
	ModeNoMatch Mode = "no_match"
	// ModeUnselected means no documents were selected.
	ModeUnselected Mode = "unselected"
)

const (
	systemPrefix = "你是一个严谨、专业的AI助手，擅长分析文档并提供清晰、准确、且带有引用的回答。" +
		"你必须严格依据提供的参考资料进行回答，不允许虚构或依赖你的预训练知识回答参考资料中没有的信息。"

	groundedIntro = "以下是一些用户选择的参考资料。请注意，你的回答必须完全基于这些资料，如果答案不在其中，请明确说明。\n\n"

	// RefusalSentence is the exact reply required when the references do not cover the question.
	RefusalSentence = "抱歉，根据我当前掌握的资料，无法从提供的参考资料中找到此问题的答案。"

	groundedInstruction = "请根据上述提供的参考资料，准确、简洁地回答以下用户的问题。" +
		"**在回答中，如果使用了参考资料，务必在相关内容后用方括号加数字的形式引用，例如：某个概念的定义[1]，某个论点[2]。** " +
		"如果参考资料中没有提及相关信息，请直接回答‘" + RefusalSentence + "’\n\n"

	noMatchContext = "用户提问，但无法从选择的文件中找到与问题相关的参考资料。我将完全根据我已有的知识进行回答。" +
		"如果您的原始问题是关于特定文档的，请确保文档内容中包含您的问题。请注意，我无法访问您本地的文件。"

	unselectedContext = "用户提问，未选择任何参考资料。我将完全根据我已有的知识进行回答。\n\n"

	userPrefix = "用户问题："
)

// Prompt is the system + user message pair sent to the model.
type Prompt struct {
	Mode   Mode
	System string
	User   string
}

// Assemble builds the prompt for a question. The mode depends only on whether
// documents were selected and whether any fragment was retrieved.
func Assemble(query string, selectedDocumentIDs []string, blocks []citation.PromptBlock) *Prompt {
	var sb strings.Builder
	sb.WriteString(systemPrefix)

	mode := ModeUnselected
	switch {
	case len(selectedDocumentIDs) > 0 && len(blocks) > 0:
		mode = ModeGrounded
		sb.WriteString(groundedIntro)
		for _, b := range blocks {
			sb.WriteString("### 参考资料：文档 '")
			sb.WriteString(b.DocumentName)
			sb.WriteString("'，片段 ")
			sb.WriteString(b.Tag())
			sb.WriteString("\n```text\n")
			sb.WriteString(b.Text)
			sb.WriteString("\n```\n\n")
		}
		sb.WriteString(groundedInstruction)
	case len(selectedDocumentIDs) > 0:
		mode = ModeNoMatch
		sb.WriteString(noMatchContext)
	default:
		sb.WriteString(unselectedContext)
	}

	return &Prompt{
		Mode:   mode,
		System: sb.String(),
		User:   userPrefix + query,
	}
}
