package service

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/biz"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/export"
	kbservice "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/service"
	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// ChatService exposes the chat use case over HTTP.
type ChatService struct {
	chatUseCase *biz.ChatUseCase
	renderers   *export.Registry
	logger      *logger.Logger
}

// NewChatService creates a new chat service
func NewChatService(chatUseCase *biz.ChatUseCase, renderers *export.Registry, lgr *logger.Logger) *ChatService {
	if lgr == nil {
		lgr = logger.L()
	}
	return &ChatService{
		chatUseCase: chatUseCase,
		renderers:   renderers,
		logger:      lgr.Named("chat_service"),
	}
}

// RegisterRoutes registers chat routes
func (s *ChatService) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/chat", s.SendMessage)
	api.GET("/chat-history", s.ListSessions)
	api.GET("/chat/:id/messages", s.ListMessages)
	api.GET("/export-chat/:id", s.ExportSession)
}

// SendMessage handles POST /chat. A failed model call still returns the full
// chat body, with the status of the failure.
func (s *ChatService) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := s.chatUseCase.Send(c.Request.Context(), &biz.SendRequest{
		Message:     req.Message,
		SessionID:   req.ChatID,
		DocumentIDs: req.RelatedFileIDs,
		Model:       req.ModelSettings.Model,
		Temperature: req.ModelSettings.Temperature,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	body := toChatResponse(res)
	if res.ModelErr != nil {
		appErr := res.ModelErr.AppError()
		response.Write(c, appErr.HTTPStatus(), appErr.Code, res.Answer, body)
		return
	}
	response.Success(c, body)
}

// ListSessions handles GET /chat-history
func (s *ChatService) ListSessions(c *gin.Context) {
	summaries := s.chatUseCase.ListSessions()
	items := make([]*SessionResponse, len(summaries))
	for i, sum := range summaries {
		items[i] = toSessionResponse(sum)
	}
	response.Success(c, items)
}

// ListMessages handles GET /chat/:id/messages
func (s *ChatService) ListMessages(c *gin.Context) {
	msgs, related := s.chatUseCase.Messages(c.Param("id"))
	response.Success(c, &MessagesResponse{
		Messages:         toMessageResponses(msgs),
		RelatedFilesMeta: kbservice.ToDocumentResponses(related),
	})
}

// ExportSession handles GET /export-chat/:id?format=docx|html
func (s *ChatService) ExportSession(c *gin.Context) {
	format := c.DefaultQuery("format", string(export.FormatDOCX))
	renderer, ok := s.renderers.Get(format)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "unsupported export format: "+format)
		return
	}

	transcript, err := s.chatUseCase.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, transcript); err != nil {
		s.logger.Error("failed to render transcript",
			zap.String("session_id", transcript.SessionID),
			zap.String("format", format),
			zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrInternalServer, "export failed"))
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": transcript.FileName(string(renderer.Format())),
	})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}
