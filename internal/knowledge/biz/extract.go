package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/loader"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/storage"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ExtractionObserver 提取失败观测
type ExtractionObserver interface {
	ObserveExtractionFailure(fileType string)
}

// ExtractUseCase 文档文本提取，按文件名和修改时间缓存结果
type ExtractUseCase struct {
	files    storage.FileStore
	loaders  *loader.Factory
	cache    *cache.Cache
	observer ExtractionObserver
	logger   *logger.Logger
}

// NewExtractUseCase 创建提取用例，ttl <= 0 时不缓存
func NewExtractUseCase(files storage.FileStore, loaders *loader.Factory, ttl time.Duration, observer ExtractionObserver, lgr *logger.Logger) *ExtractUseCase {
	if lgr == nil {
		lgr = logger.L()
	}
	uc := &ExtractUseCase{
		files:    files,
		loaders:  loaders,
		observer: observer,
		logger:   lgr.Named("extract"),
	}
	if ttl > 0 {
		uc.cache = cache.New(ttl, 2*ttl)
	}
	return uc
}

func cacheKey(info *storage.FileInfo) string {
	return fmt.Sprintf("%s@%d:%d", info.Name, info.ModTime.UnixNano(), info.Size)
}

// Extract 提取文档纯文本
func (uc *ExtractUseCase) Extract(ctx context.Context, doc *kbtypes.Document) (string, error) {
	text, err := uc.extract(ctx, doc)
	if err != nil {
		if uc.observer != nil {
			uc.observer.ObserveExtractionFailure(doc.Type.String())
		}
		uc.logger.Warn("failed to extract document text",
			zap.String("document_id", doc.ID),
			zap.String("name", doc.Name),
			zap.String("type", doc.Type.String()),
			zap.Error(err))
		return "", err
	}
	return text, nil
}

func (uc *ExtractUseCase) extract(ctx context.Context, doc *kbtypes.Document) (string, error) {
	l, err := uc.loaders.CreateLoader(doc.Type)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDocumentUnsupported, doc.Type.String())
	}

	info, err := uc.files.Stat(ctx, doc.Name)
	if errors.Is(err, storage.ErrFileNotFound) {
		return "", apperrors.Wrap(err, apperrors.ErrDocumentNotFound, doc.Name)
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDocumentStorageFailed)
	}

	key := cacheKey(info)
	if uc.cache != nil {
		if v, ok := uc.cache.Get(key); ok {
			return v.(string), nil
		}
	}

	rc, _, err := uc.files.Open(ctx, doc.Name)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDocumentStorageFailed)
	}
	defer rc.Close()

	start := time.Now()
	loaded, err := l.Load(ctx, rc)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDocumentExtractFailed, doc.Name)
	}

	uc.logger.Debug("document text extracted",
		zap.String("name", doc.Name),
		zap.Int("length", len(loaded.Content)),
		zap.Duration("elapsed", time.Since(start)))

	if uc.cache != nil {
		uc.cache.Set(key, loaded.Content, cache.DefaultExpiration)
	}
	return loaded.Content, nil
}
