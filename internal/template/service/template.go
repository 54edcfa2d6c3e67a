package service

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-notebook-backend/internal/template/biz"
	"go.uber.org/zap"
)

type TemplateService struct {
	templateUseCase *biz.TemplateUseCase
	logger          *logger.Logger
}

func NewTemplateService(templateUseCase *biz.TemplateUseCase, lgr *logger.Logger) *TemplateService {
	if lgr == nil {
		lgr = logger.L()
	}
	return &TemplateService{
		templateUseCase: templateUseCase,
		logger:          lgr.Named("template_service"),
	}
}

// RegisterRoutes 注册模板路由
func (s *TemplateService) RegisterRoutes(api *gin.RouterGroup) {
	templates := api.Group("/templates")
	{
		templates.GET("/list", s.ListTemplates)
		templates.POST("/extract-from-file", s.ExtractFromFile)
		templates.POST("/rewrite-answer", s.RewriteAnswer)
		templates.POST("/summarize", s.Summarize)
		templates.POST("/extract", s.Extract)
	}
}

// ListTemplates 列出模板库
func (s *TemplateService) ListTemplates(c *gin.Context) {
	response.Success(c, s.templateUseCase.List())
}

// ExtractFromFile 从已上传文件中提取问答对并生成模板
func (s *TemplateService) ExtractFromFile(c *gin.Context) {
	var req ExtractFromFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := s.templateUseCase.ExtractFromDocument(c.Request.Context(), req.FileID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	s.logger.WithContext(c.Request.Context()).Info("templates extracted from file",
		zap.String("file_id", req.FileID),
		zap.Int("added", len(res.Added)))

	response.Success(c, &ExtractFromFileResponse{
		Message:       fmt.Sprintf("从文件中识别到 %d 组问答，新增 %d 条模板", res.Pairs, len(res.Added)),
		Pairs:         res.Pairs,
		ExtractedData: res.Added,
	})
}

// RewriteAnswer 按模板库中的方法改写答案
func (s *TemplateService) RewriteAnswer(c *gin.Context) {
	var req RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rewritten, err := s.templateUseCase.Rewrite(c.Request.Context(), req.Question, req.OriginalAnswer, *req.MethodIndex)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, &RewriteResponse{RewrittenAnswer: rewritten})
}

// Summarize 梳理段落重点
func (s *TemplateService) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	summary, err := s.templateUseCase.Summarize(c.Request.Context(), req.Paragraph)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, summary)
}

// Extract 从一组问答中提取模板并保存
func (s *TemplateService) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	entry, added, err := s.templateUseCase.ExtractAndSave(c.Request.Context(), req.Question, req.Answer)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, &ExtractResponse{Entry: entry, Added: added})
}
