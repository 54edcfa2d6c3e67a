package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	assistantservice "github.com/lk2023060901/ai-notebook-backend/internal/assistant/service"
	"github.com/lk2023060901/ai-notebook-backend/internal/conf"
	kbservice "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/service"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/metrics"
	templateservice "github.com/lk2023060901/ai-notebook-backend/internal/template/service"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server          *http.Server
	router          *gin.Engine
	shutdownTimeout time.Duration
	logger          *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	documentService *kbservice.DocumentService,
	chatService *assistantservice.ChatService,
	templateService *templateservice.TemplateService,
) *HTTPServer {
	gin.SetMode(config.Server.Mode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(CORSMiddleware(config.Server.CORSOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if config.Server.EnableMetrics && m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API routes
	api := router.Group("/api/v1")
	documentService.RegisterRoutes(api, router)
	chatService.RegisterRoutes(api)
	templateService.RegisterRoutes(api)

	return &HTTPServer{
		server: &http.Server{
			Addr:         config.Server.Addr(),
			Handler:      router,
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		router:          router,
		shutdownTimeout: config.Server.ShutdownTimeout,
		logger:          log.Named("http"),
	}
}

// Handler 返回路由，便于测试
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop 优雅关闭，等待进行中的请求完成
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}

// CORSMiddleware 允许配置的来源跨域访问，"*" 表示任意来源
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := allowed[origin]
			switch {
			case allowAll:
				c.Header("Access-Control-Allow-Origin", "*")
			case ok:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+logger.RequestIDHeader)
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, "+logger.RequestIDHeader)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
