package injector

import (
	"context"

	"github.com/lk2023060901/ai-notebook-backend/internal/conf"
	kbbiz "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/biz"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/storage"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/server"
	"go.uber.org/zap"
)

// App encapsulates all application dependencies
type App struct {
	Config          *conf.Config
	Logger          *logger.Logger
	HTTPServer      *server.HTTPServer
	DocumentUseCase *kbbiz.DocumentUseCase
	Watcher         *storage.Watcher
}

// SyncDocuments 启动时同步一次上传目录，并在开启监视时持续同步
func (a *App) SyncDocuments(ctx context.Context) {
	if _, err := a.DocumentUseCase.List(ctx); err != nil {
		a.Logger.Warn("initial document sync failed", zap.Error(err))
	}
	if a.Watcher != nil {
		go a.Watcher.Run(ctx, a.DocumentUseCase.Reconcile)
	}
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
	documentUseCase *kbbiz.DocumentUseCase,
	watcher *storage.Watcher,
) *App {
	return &App{
		Config:          config,
		Logger:          log,
		HTTPServer:      httpServer,
		DocumentUseCase: documentUseCase,
		Watcher:         watcher,
	}
}
