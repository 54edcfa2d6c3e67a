package biz

import (
	"context"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/chunker"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/retriever"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// RetrieveResult 单次检索结果
type RetrieveResult struct {
	Documents  []*kbtypes.Document   // 选中且存在的文档，保持请求顺序
	Candidates int                   // 参与打分的片段总数
	Scored     []kbtypes.ScoredChunk // 按分数排序、去重、截断后的片段
}

// RetrievalUseCase 每次请求重新提取、分块并按词重叠打分
type RetrievalUseCase struct {
	repo       DocumentRepo
	extractor  *ExtractUseCase
	chunker    chunker.Chunker
	retriever  *retriever.Retriever
	pool       *workerpool.Pool
	maxResults int
	logger     *logger.Logger
}

// NewRetrievalUseCase 创建检索用例
func NewRetrievalUseCase(
	repo DocumentRepo,
	extractor *ExtractUseCase,
	ch chunker.Chunker,
	r *retriever.Retriever,
	pool *workerpool.Pool,
	maxResults int,
	lgr *logger.Logger,
) *RetrievalUseCase {
	if lgr == nil {
		lgr = logger.L()
	}
	return &RetrievalUseCase{
		repo:       repo,
		extractor:  extractor,
		chunker:    ch,
		retriever:  r,
		pool:       pool,
		maxResults: maxResults,
		logger:     lgr.Named("retrieval"),
	}
}

// Retrieve 在选中文档中检索与查询相关的片段。
// 各文档的提取和分块并行执行，结果按选择顺序汇总后再打分，排序结果与串行一致。
// 提取失败的文档不贡献片段。
func (uc *RetrievalUseCase) Retrieve(ctx context.Context, query string, documentIDs []string) (*RetrieveResult, error) {
	result := &RetrieveResult{}
	if len(documentIDs) == 0 {
		return result, nil
	}

	docs := uc.repo.DocumentsByIDs(documentIDs)
	result.Documents = docs
	if len(docs) == 0 {
		return result, nil
	}

	start := time.Now()
	perDoc := make([][]kbtypes.Chunk, len(docs))
	err := uc.pool.ForEach(ctx, len(docs), func(ctx context.Context, i int) {
		perDoc[i] = uc.chunkDocument(ctx, docs[i])
	})
	if err != nil {
		return nil, err
	}

	var candidates []kbtypes.Chunk
	for _, chunks := range perDoc {
		candidates = append(candidates, chunks...)
	}
	result.Candidates = len(candidates)
	result.Scored = uc.retriever.Retrieve(query, candidates, uc.maxResults)

	uc.logger.WithContext(ctx).Debug("retrieval finished",
		zap.Int("documents", len(docs)),
		zap.Int("candidates", result.Candidates),
		zap.Int("selected", len(result.Scored)),
		zap.Strings("query_tokens", uc.retriever.QueryTokens(query)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (uc *RetrievalUseCase) chunkDocument(ctx context.Context, doc *kbtypes.Document) []kbtypes.Chunk {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil
	}

	pieces := uc.chunker.Chunk(text)
	chunks := make([]kbtypes.Chunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, kbtypes.Chunk{
			ChunkID:      kbtypes.ChunkID(p.Index),
			Text:         p.Content,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
		})
	}
	return chunks
}
