package retriever

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/segment"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// DefaultMaxResults 单次请求最多放入上下文的片段数
const DefaultMaxResults = 8

// Retriever 词重叠检索器：分数 = 查询词集合与片段词集合的交集大小
type Retriever struct {
	segmenter  segment.Segmenter
	stopWords  StopWords
	maxResults int
}

// Option 检索器选项
type Option func(*Retriever)

// WithStopWords 替换停用词集合
func WithStopWords(sw StopWords) Option {
	return func(r *Retriever) { r.stopWords = sw }
}

// WithMaxResults 设置默认结果上限
func WithMaxResults(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// New 创建检索器
func New(seg segment.Segmenter, opts ...Option) *Retriever {
	r := &Retriever{
		segmenter:  seg,
		stopWords:  DefaultStopWords(),
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// QueryTokens 查询词集合：小写、分词、去掉单字和停用词，按首次出现顺序返回
func (r *Retriever) QueryTokens(query string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range r.segmenter.Segment(strings.ToLower(query)) {
		tok = strings.TrimSpace(tok)
		if utf8.RuneCountInString(tok) <= 1 || r.stopWords.Contains(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Retrieve 为每个片段打分，丢弃零分，按分数降序稳定排序，
// 按 (document_id, chunk_id) 去重并截断到 maxResults（<=0 使用默认值）
func (r *Retriever) Retrieve(query string, chunks []kbtypes.Chunk, maxResults int) []kbtypes.ScoredChunk {
	if maxResults <= 0 {
		maxResults = r.maxResults
	}

	queryTokens := r.QueryTokens(query)
	if len(queryTokens) == 0 || len(chunks) == 0 {
		return []kbtypes.ScoredChunk{}
	}

	scored := make([]kbtypes.ScoredChunk, 0, len(chunks))
	for _, ch := range chunks {
		if score := r.score(queryTokens, ch.Text); score > 0 {
			scored = append(scored, kbtypes.ScoredChunk{Chunk: ch, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	type key struct{ doc, chunk string }
	seen := make(map[key]struct{}, len(scored))
	results := make([]kbtypes.ScoredChunk, 0, maxResults)
	for _, sc := range scored {
		k := key{sc.Chunk.DocumentID, sc.Chunk.ChunkID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		results = append(results, sc)
		if len(results) == maxResults {
			break
		}
	}

	return results
}

// score 片段文本分词后的集合与查询词集合的交集大小
func (r *Retriever) score(queryTokens []string, text string) int {
	chunkTokens := make(map[string]struct{})
	for _, tok := range r.segmenter.Segment(strings.ToLower(text)) {
		chunkTokens[tok] = struct{}{}
	}

	score := 0
	for _, q := range queryTokens {
		if _, ok := chunkTokens[q]; ok {
			score++
		}
	}
	return score
}
