package biz

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/llm"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/template/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultMaxDocumentRunes 送入问答对提取的文档最大字符数
const DefaultMaxDocumentRunes = 8000

// TruncationMarker 文档被截断时追加的标记
const TruncationMarker = "\n... [文档已截断]"

// TemplateRepo 模板仓储接口
type TemplateRepo interface {
	List() []*types.Entry
	Get(index int) (*types.Entry, bool)
	Add(ctx context.Context, entry *types.Entry) bool
}

// DocumentSource 读取已上传文档
type DocumentSource interface {
	Get(id string) (*kbtypes.Document, error)
}

// TextExtractor 提取文档纯文本
type TextExtractor interface {
	Extract(ctx context.Context, doc *kbtypes.Document) (string, error)
}

// TemplateUseCase 模板库用例：段落重点、模板提取、按方法改写答案
type TemplateUseCase struct {
	repo             TemplateRepo
	documents        DocumentSource
	extractor        TextExtractor
	completer        llm.Completer
	maxDocumentRunes int
	logger           *logger.Logger
}

// NewTemplateUseCase 创建模板用例
func NewTemplateUseCase(
	repo TemplateRepo,
	documents DocumentSource,
	extractor TextExtractor,
	completer llm.Completer,
	maxDocumentRunes int,
	lgr *logger.Logger,
) *TemplateUseCase {
	if lgr == nil {
		lgr = logger.L()
	}
	if maxDocumentRunes <= 0 {
		maxDocumentRunes = DefaultMaxDocumentRunes
	}
	return &TemplateUseCase{
		repo:             repo,
		documents:        documents,
		extractor:        extractor,
		completer:        completer,
		maxDocumentRunes: maxDocumentRunes,
		logger:           lgr.Named("template"),
	}
}

func temperature(v float32) *float32 { return &v }

// List 返回全部模板
func (uc *TemplateUseCase) List() []*types.Entry {
	return uc.repo.List()
}

// Summarize 梳理段落重点
func (uc *TemplateUseCase) Summarize(ctx context.Context, paragraph string) (*types.Summary, error) {
	if strings.TrimSpace(paragraph) == "" {
		return nil, apperrors.New(apperrors.ErrTemplateEmptyInput, "paragraph")
	}

	reply, err := uc.callJSON(ctx, summarizeSystem, fmt.Sprintf(summarizeUser, paragraph), 0.3, 500)
	if err != nil {
		return nil, err
	}

	summary := &types.Summary{MainPoints: []string{}}
	for _, p := range gjson.Get(reply, "main_points").Array() {
		if s := strings.TrimSpace(p.String()); s != "" {
			summary.MainPoints = append(summary.MainPoints, s)
		}
	}
	return summary, nil
}

// ExtractAndSave 从一组问答中提取模板和方法，完整时写入模板库。
// 返回的 bool 表示是否新增（重复的不会新增）。
func (uc *TemplateUseCase) ExtractAndSave(ctx context.Context, question, answer string) (*types.Entry, bool, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, false, apperrors.New(apperrors.ErrTemplateEmptyInput, "question and answer")
	}

	reply, err := uc.callJSON(ctx, extractSystem, fmt.Sprintf(extractUser, question, answer), 0.5, 500)
	if err != nil {
		return nil, false, err
	}

	entry := &types.Entry{
		QuestionTemplate: strings.TrimSpace(gjson.Get(reply, "question_template").String()),
		AnswerMethod:     strings.TrimSpace(gjson.Get(reply, "answer_method").String()),
	}
	if entry.QuestionTemplate == "" || entry.AnswerMethod == "" {
		uc.logger.Warn("incomplete template extracted", zap.String("reply", reply))
		return nil, false, apperrors.New(apperrors.ErrTemplateExtractFailed, "incomplete data extracted from model")
	}

	return entry, uc.repo.Add(ctx, entry), nil
}

// ExtractFromDocument 先从文档中识别问答对，再逐对提取模板，返回新增的模板
func (uc *TemplateUseCase) ExtractFromDocument(ctx context.Context, documentID string) (*types.DocumentExtraction, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, apperrors.New(apperrors.ErrTemplateEmptyInput, "file id")
	}

	doc, err := uc.documents.Get(documentID)
	if err != nil {
		return nil, err
	}
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.New(apperrors.ErrDocumentExtractFailed, "document has no text")
	}

	pairs, err := uc.extractPairs(ctx, uc.truncate(text), doc.TypeTag)
	if err != nil {
		return nil, err
	}

	result := &types.DocumentExtraction{Pairs: len(pairs), Added: []*types.Entry{}}
	for i, pair := range pairs {
		entry, added, err := uc.ExtractAndSave(ctx, pair.Question, pair.Answer)
		if err != nil {
			uc.logger.Warn("skipping qa pair", zap.Int("index", i), zap.Error(err))
			continue
		}
		if added {
			result.Added = append(result.Added, entry)
		}
	}

	uc.logger.Info("templates extracted from document",
		zap.String("document_id", doc.ID),
		zap.Int("pairs", result.Pairs),
		zap.Int("added", len(result.Added)))
	return result, nil
}

func (uc *TemplateUseCase) truncate(text string) string {
	if utf8.RuneCountInString(text) <= uc.maxDocumentRunes {
		return text
	}
	uc.logger.Warn("document text truncated for qa extraction",
		zap.Int("runes", utf8.RuneCountInString(text)),
		zap.Int("limit", uc.maxDocumentRunes))
	return string([]rune(text)[:uc.maxDocumentRunes]) + TruncationMarker
}

func (uc *TemplateUseCase) extractPairs(ctx context.Context, text, typeTag string) ([]types.QAPair, error) {
	if typeTag == "" {
		typeTag = "未知类型"
	}

	reply, err := uc.callJSON(ctx, pairsSystem, fmt.Sprintf(pairsUser, typeTag, text), 0.2, 2000)
	if err != nil {
		return nil, err
	}

	list := gjson.Get(reply, "qa_pairs")
	if !list.IsArray() {
		uc.logger.Warn("model reply has no qa_pairs list", zap.String("reply", reply))
		return nil, nil
	}

	var pairs []types.QAPair
	list.ForEach(func(_, v gjson.Result) bool {
		q := strings.TrimSpace(v.Get("question").String())
		a := strings.TrimSpace(v.Get("answer").String())
		if q != "" && a != "" {
			pairs = append(pairs, types.QAPair{Question: q, Answer: a})
		}
		return true
	})
	return pairs, nil
}

// Rewrite 按模板库中第 methodIndex 条答题方法改写答案
func (uc *TemplateUseCase) Rewrite(ctx context.Context, question, answer string, methodIndex int) (string, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return "", apperrors.New(apperrors.ErrTemplateEmptyInput, "question and original answer")
	}

	entry, ok := uc.repo.Get(methodIndex)
	if !ok {
		return "", apperrors.New(apperrors.ErrTemplateInvalidIndex, fmt.Sprintf("index %d", methodIndex))
	}

	completion, err := uc.completer.Complete(ctx, &llm.CompletionRequest{
		System:      rewriteSystem,
		User:        fmt.Sprintf(rewriteUser, question, answer, entry.AnswerMethod),
		Temperature: temperature(0.7),
		MaxTokens:   1000,
	})
	if err != nil {
		return "", uc.modelError(err, apperrors.ErrTemplateRewriteFailed)
	}

	rewritten := strings.TrimSpace(completion.Text)
	if rewritten == "" {
		return "", apperrors.New(apperrors.ErrTemplateRewriteFailed, "empty reply")
	}
	return rewritten, nil
}

func (uc *TemplateUseCase) callJSON(ctx context.Context, system, user string, temp float32, maxTokens int) (string, error) {
	completion, err := uc.completer.Complete(ctx, &llm.CompletionRequest{
		System:      system,
		User:        user,
		Temperature: temperature(temp),
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		return "", uc.modelError(err, apperrors.ErrTemplateExtractFailed)
	}

	reply := stripCodeFence(completion.Text)
	if !gjson.Valid(reply) {
		uc.logger.Warn("model reply is not valid json", zap.String("reply", completion.Text))
		return "", apperrors.New(apperrors.ErrTemplateExtractFailed, "invalid JSON response from model")
	}
	return reply, nil
}

func (uc *TemplateUseCase) modelError(err error, fallback int) error {
	me := llm.Classify(err)
	uc.logger.Error("model call failed", zap.String("kind", string(me.Kind)), zap.Error(err))
	if me.Kind == llm.KindUnknown {
		return apperrors.Wrap(err, fallback, me.Notice())
	}
	return me.AppError()
}

// stripCodeFence 去掉模型偶尔包裹在回复外层的 ``` 代码块
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
