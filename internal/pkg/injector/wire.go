//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	assistantservice "github.com/lk2023060901/ai-notebook-backend/internal/assistant/service"
	"github.com/lk2023060901/ai-notebook-backend/internal/conf"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/loader"
	kbservice "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/service"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-notebook-backend/internal/server"
	templatebiz "github.com/lk2023060901/ai-notebook-backend/internal/template/biz"
	templateservice "github.com/lk2023060901/ai-notebook-backend/internal/template/service"
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	metrics.New,
	provideData,
	provideStore,
	provideFileStore,
)

// Knowledge providers
var knowledgeProviderSet = wire.NewSet(
	loader.NewFactory,
	provideSegmenter,
	provideRetriever,
	provideChunker,
	provideWorkerPool,
	provideDocumentUseCase,
	provideExtractUseCase,
	provideRetrievalUseCase,
)

// Model and template providers
var templateProviderSet = wire.NewSet(
	provideLLMClient,
	provideTemplateRepo,
	provideTemplateUseCase,
)

// Chat providers
var chatProviderSet = wire.NewSet(
	provideChatUseCase,
	provideExportRegistry,
)

// HTTP service providers
var httpServiceProviderSet = wire.NewSet(
	kbservice.NewDocumentService,
	assistantservice.NewChatService,
	templateservice.NewTemplateService,
)

// Server providers
var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
	provideWatcher,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(
		dataProviderSet,
		knowledgeProviderSet,
		templateProviderSet,
		chatProviderSet,
		httpServiceProviderSet,
		serverProviderSet,
		newApp,
	)
	return nil, nil, nil
}

// InitializeTemplates 只构建模板库用例，供命令行使用
func InitializeTemplates(config *conf.Config, log *logger.Logger) (*templatebiz.TemplateUseCase, func(), error) {
	wire.Build(
		dataProviderSet,
		loader.NewFactory,
		provideDocumentUseCase,
		provideExtractUseCase,
		templateProviderSet,
	)
	return nil, nil, nil
}
