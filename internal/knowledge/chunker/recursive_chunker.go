package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators 默认分隔符：段落、换行、句子、空格、字符
var DefaultSeparators = []string{
	"\n\n",
	"\n",
	"。",
	"！",
	"？",
	". ",
	"! ",
	"? ",
	" ",
	"",
}

// RecursiveChunker 递归字符分块器
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
}

// NewRecursiveChunker 创建递归分块器
func NewRecursiveChunker(cfg *Config) (*RecursiveChunker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive")
	}
	if cfg.Overlap < 0 {
		return nil, fmt.Errorf("chunk overlap cannot be negative")
	}
	if cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("chunk overlap must be less than chunk size")
	}

	separators := cfg.Separators
	if len(separators) == 0 {
		separators = DefaultSeparators
	}

	return &RecursiveChunker{
		size:       cfg.Size,
		overlap:    cfg.Overlap,
		separators: separators,
	}, nil
}

// ChunkSize 返回分块大小
func (c *RecursiveChunker) ChunkSize() int { return c.size }

// ChunkOverlap 返回分块重叠大小
func (c *RecursiveChunker) ChunkOverlap() int { return c.overlap }

// Chunk 将文本分块
func (c *RecursiveChunker) Chunk(text string) []*TextChunk {
	if strings.TrimSpace(text) == "" {
		return []*TextChunk{}
	}

	pieces := c.splitText(text, c.separators)

	chunks := make([]*TextChunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, &TextChunk{Index: len(chunks), Content: p})
	}
	return chunks
}

// splitText 选出文本中出现的第一个分隔符切分，过长的片段用后续分隔符递归切分
func (c *RecursiveChunker) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var fallbacks []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			fallbacks = separators[i+1:]
			break
		}
	}

	var (
		result []string
		good   []string
	)
	for _, piece := range splitKeepSeparator(text, separator) {
		if runeLen(piece) < c.size {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			result = append(result, c.mergeSplits(good)...)
			good = nil
		}
		if len(fallbacks) == 0 {
			result = append(result, piece)
		} else {
			result = append(result, c.splitText(piece, fallbacks)...)
		}
	}
	if len(good) > 0 {
		result = append(result, c.mergeSplits(good)...)
	}

	return result
}

// mergeSplits 把小片段拼成不超过窗口大小的块，块之间保留不超过 overlap 的尾部上下文
func (c *RecursiveChunker) mergeSplits(splits []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)

	for _, s := range splits {
		n := runeLen(s)

		if total+n > c.size && len(current) > 0 {
			if doc := joinTrimmed(current); doc != "" {
				docs = append(docs, doc)
			}
			for total > c.overlap || (total+n > c.size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}

		current = append(current, s)
		total += n
	}

	if doc := joinTrimmed(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepSeparator 按分隔符切分，分隔符保留在后一段开头；空分隔符按字符切分
func splitKeepSeparator(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, separator)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, separator+p)
	}
	return out
}

func joinTrimmed(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
