package biz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/storage"
	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// DocumentRepo 文档元数据仓储接口
type DocumentRepo interface {
	ListDocuments() []*kbtypes.Document
	GetDocument(id string) (*kbtypes.Document, bool)
	DocumentsByIDs(ids []string) []*kbtypes.Document
	AddDocument(ctx context.Context, doc *kbtypes.Document)
	ReplaceDocuments(ctx context.Context, docs []*kbtypes.Document)
}

// UploadRequest 上传请求
type UploadRequest struct {
	FileName    string
	TypeTag     string
	ContentType string
	Size        int64
	Content     io.Reader
}

// DocumentUseCase 文档用例：上传、列表同步、读取
type DocumentUseCase struct {
	repo          DocumentRepo
	files         storage.FileStore
	maxUploadSize int64
	logger        *logger.Logger

	// 文件名分配与元数据同步串行执行
	mu  sync.Mutex
	now func() time.Time
}

// NewDocumentUseCase 创建文档用例
func NewDocumentUseCase(repo DocumentRepo, files storage.FileStore, maxUploadSize int64, lgr *logger.Logger) *DocumentUseCase {
	if lgr == nil {
		lgr = logger.L()
	}
	return &DocumentUseCase{
		repo:          repo,
		files:         files,
		maxUploadSize: maxUploadSize,
		logger:        lgr.Named("document"),
		now:           time.Now,
	}
}

var (
	unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_.\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// SanitizeFileName 清洗上传文件名：保留字母数字（含中文）、下划线、点、连字符，空白替换为下划线。
// 清洗后为空时使用 uploaded_file_<毫秒时间戳>，扩展名保持不变。
func SanitizeFileName(name string, now time.Time) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = unsafeNameChars.ReplaceAllString(base, "")
	base = whitespaceRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = fmt.Sprintf("uploaded_file_%d", now.UnixMilli())
	}

	ext = unsafeNameChars.ReplaceAllString(ext, "")
	ext = whitespaceRuns.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}
	return base + ext
}

// uniqueName 在存储中为文件名追加 _1、_2 ... 直到不冲突
func (uc *DocumentUseCase) uniqueName(ctx context.Context, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 1; ; n++ {
		exists, err := storage.Exists(ctx, uc.files, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
}

// Upload 保存上传文件并登记元数据
func (uc *DocumentUseCase) Upload(ctx context.Context, req *UploadRequest) (*kbtypes.Document, error) {
	if req == nil || req.Content == nil || strings.TrimSpace(req.FileName) == "" {
		return nil, apperrors.New(apperrors.ErrDocumentMissingFile)
	}
	if uc.maxUploadSize > 0 && req.Size > uc.maxUploadSize {
		return nil, apperrors.New(apperrors.ErrInvalidParams,
			fmt.Sprintf("file exceeds %d bytes", uc.maxUploadSize))
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	name, err := uc.uniqueName(ctx, SanitizeFileName(req.FileName, uc.now()))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDocumentStorageFailed)
	}

	info, err := uc.files.Put(ctx, name, req.Content, req.Size, req.ContentType)
	if err != nil {
		uc.logger.Error("failed to store upload", zap.String("name", name), zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrDocumentUploadFailed)
	}

	tag := strings.TrimSpace(req.TypeTag)
	if tag == "" {
		tag = kbtypes.DefaultTypeTag
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	doc := &kbtypes.Document{
		ID:         id.String(),
		Name:       name,
		Type:       typeOf(name),
		SizeBytes:  info.Size,
		UploadedAt: uc.now(),
		TypeTag:    tag,
	}
	uc.repo.AddDocument(ctx, doc)

	uc.logger.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("name", doc.Name),
		zap.String("original_name", req.FileName),
		zap.Int64("size", doc.SizeBytes),
		zap.String("type_tag", doc.TypeTag))

	return doc, nil
}

// List 以存储中的文件为准同步元数据后返回文档列表
func (uc *DocumentUseCase) List(ctx context.Context) ([]*kbtypes.Document, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	files, err := uc.files.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDocumentStorageFailed)
	}

	byName := make(map[string]*kbtypes.Document)
	for _, doc := range uc.repo.ListDocuments() {
		byName[doc.Name] = doc
	}

	docs := make([]*kbtypes.Document, 0, len(files))
	added := 0
	for _, f := range files {
		if doc, ok := byName[f.Name]; ok {
			docs = append(docs, doc)
			delete(byName, f.Name)
			continue
		}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
		}
		docs = append(docs, &kbtypes.Document{
			ID:         id.String(),
			Name:       f.Name,
			Type:       typeOf(f.Name),
			SizeBytes:  f.Size,
			UploadedAt: f.ModTime,
			TypeTag:    kbtypes.DefaultTypeTag,
		})
		added++
	}

	if added > 0 || len(byName) > 0 {
		uc.repo.ReplaceDocuments(ctx, docs)
		uc.logger.Info("document metadata reconciled",
			zap.Int("added", added),
			zap.Int("removed", len(byName)),
			zap.Int("total", len(docs)))
	}
	return docs, nil
}

// Reconcile 供目录监听回调使用
func (uc *DocumentUseCase) Reconcile(ctx context.Context) {
	if _, err := uc.List(ctx); err != nil {
		uc.logger.Warn("failed to reconcile documents", zap.Error(err))
	}
}

// Get 按 ID 获取文档元数据
func (uc *DocumentUseCase) Get(id string) (*kbtypes.Document, error) {
	doc, ok := uc.repo.GetDocument(id)
	if !ok {
		return nil, apperrors.New(apperrors.ErrDocumentNotFound, id)
	}
	return doc, nil
}

// Open 按文件名打开已上传文件
func (uc *DocumentUseCase) Open(ctx context.Context, name string) (io.ReadCloser, *storage.FileInfo, error) {
	rc, info, err := uc.files.Open(ctx, name)
	if errors.Is(err, storage.ErrFileNotFound) {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrDocumentStorageFailed)
	}
	return rc, info, nil
}

func typeOf(name string) kbtypes.FileType {
	if ft := kbtypes.FileTypeOf(name); ft != "" {
		return ft
	}
	return kbtypes.FileType(kbtypes.DefaultTypeTag)
}
