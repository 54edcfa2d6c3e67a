package service

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/biz"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type DocumentService struct {
	docUseCase *biz.DocumentUseCase
	logger     *logger.Logger
}

func NewDocumentService(docUseCase *biz.DocumentUseCase, lgr *logger.Logger) *DocumentService {
	if lgr == nil {
		lgr = logger.L()
	}
	return &DocumentService{
		docUseCase: docUseCase,
		logger:     lgr.Named("document_service"),
	}
}

// RegisterRoutes 注册文档路由
func (s *DocumentService) RegisterRoutes(api *gin.RouterGroup, root gin.IRouter) {
	api.GET("/files", s.ListDocuments)
	api.POST("/upload", s.UploadDocument)
	root.GET("/uploads/*name", s.ServeFile)
}

// ListDocuments 同步存储后列出文档
func (s *DocumentService) ListDocuments(c *gin.Context) {
	docs, err := s.docUseCase.List(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, ToDocumentResponses(docs))
}

// UploadDocument 单文件上传，表单字段 file，可选 file_type_tag
func (s *DocumentService) UploadDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrDocumentMissingFile, `form field name must be "file"`)
		return
	}
	if header.Filename == "" {
		response.ErrorWithCode(c, apperrors.ErrDocumentMissingFile, "empty filename")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrDocumentUploadFailed))
		return
	}
	defer file.Close()

	tag := c.DefaultPostForm("file_type_tag", "")

	s.logger.WithContext(c.Request.Context()).Info("single file upload",
		zap.String("filename", header.Filename),
		zap.Int64("file_size", header.Size),
		zap.String("file_type_tag", tag))

	doc, err := s.docUseCase.Upload(c.Request.Context(), &biz.UploadRequest{
		FileName:    header.Filename,
		TypeTag:     tag,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, &UploadResponse{
		Message:     "File uploaded successfully",
		FileName:    doc.Name,
		FilePath:    "/uploads/" + url.PathEscape(doc.Name),
		FileID:      doc.ID,
		FileTypeTag: doc.TypeTag,
		Document:    ToDocumentResponse(doc),
	})
}

// ServeFile 下载已上传文件
func (s *DocumentService) ServeFile(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")

	rc, info, err := s.docUseCase.Open(c.Request.Context(), name)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		s.logger.Warn("failed to stream file", zap.String("name", name), zap.Error(err))
	}
}
