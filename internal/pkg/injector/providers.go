package injector

import (
	"fmt"
	"os"

	assistantbiz "github.com/lk2023060901/ai-notebook-backend/internal/assistant/biz"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/export"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/llm"
	"github.com/lk2023060901/ai-notebook-backend/internal/conf"
	"github.com/lk2023060901/ai-notebook-backend/internal/data"
	kbbiz "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/biz"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/chunker"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/loader"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/retriever"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/segment"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/storage"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/workerpool"
	templatebiz "github.com/lk2023060901/ai-notebook-backend/internal/template/biz"
	templatedata "github.com/lk2023060901/ai-notebook-backend/internal/template/data"
)

// minioUploadPrefix MinIO 中上传文件的对象前缀
const minioUploadPrefix = "uploads/"

// Data layer helpers

func provideData(config *conf.Config, m *metrics.Metrics, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, m, log)
}

func provideStore(d *data.Data) *data.Store {
	return d.Store
}

func provideFileStore(config *conf.Config, d *data.Data, log *logger.Logger) (storage.FileStore, error) {
	if config.Storage.Backend == "minio" {
		return storage.NewMinIOStore(d.MinIOClient, minioUploadPrefix, log), nil
	}
	return storage.NewLocalStore(config.Storage.UploadDir, log)
}

// provideWatcher 只在本地存储且开启 watch 时创建，否则返回 nil
func provideWatcher(config *conf.Config, files storage.FileStore, log *logger.Logger) (*storage.Watcher, func(), error) {
	local, ok := files.(*storage.LocalStore)
	if !ok || !config.Storage.Watch {
		return nil, func() {}, nil
	}
	w, err := storage.NewWatcher(local.Dir(), 0, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch upload dir: %w", err)
	}
	return w, func() { w.Close() }, nil
}

// Knowledge helpers

func provideSegmenter(config *conf.Config) (segment.Segmenter, error) {
	return segment.NewGSESegmenter(&config.RAG.Segment)
}

func provideRetriever(seg segment.Segmenter, config *conf.Config) *retriever.Retriever {
	return retriever.New(seg, retriever.WithMaxResults(config.RAG.MaxResults))
}

func provideChunker(config *conf.Config) (chunker.Chunker, error) {
	return chunker.NewRecursiveChunker(&chunker.Config{
		Size:    config.RAG.ChunkSize,
		Overlap: config.RAG.ChunkOverlap,
	})
}

func provideWorkerPool(config *conf.Config, log *logger.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(&workerpool.Config{Workers: config.RAG.Workers}, log.Named("workerpool").Logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Shutdown, nil
}

func provideDocumentUseCase(store *data.Store, files storage.FileStore, config *conf.Config, log *logger.Logger) *kbbiz.DocumentUseCase {
	return kbbiz.NewDocumentUseCase(store, files, config.Storage.MaxUploadSize, log)
}

func provideExtractUseCase(files storage.FileStore, loaders *loader.Factory, config *conf.Config, m *metrics.Metrics, log *logger.Logger) *kbbiz.ExtractUseCase {
	return kbbiz.NewExtractUseCase(files, loaders, config.RAG.ExtractCacheTTL, m, log)
}

func provideRetrievalUseCase(
	store *data.Store,
	extractor *kbbiz.ExtractUseCase,
	ch chunker.Chunker,
	r *retriever.Retriever,
	pool *workerpool.Pool,
	config *conf.Config,
	log *logger.Logger,
) *kbbiz.RetrievalUseCase {
	return kbbiz.NewRetrievalUseCase(store, extractor, ch, r, pool, config.RAG.MaxResults, log)
}

// Assistant helpers

func provideLLMClient(config *conf.Config, m *metrics.Metrics, log *logger.Logger) (*llm.Client, error) {
	return llm.NewClient(&config.LLM, m, log)
}

func provideChatUseCase(
	store *data.Store,
	retrieval *kbbiz.RetrievalUseCase,
	client *llm.Client,
	m *metrics.Metrics,
	log *logger.Logger,
) *assistantbiz.ChatUseCase {
	return assistantbiz.NewChatUseCase(store, store, retrieval, client, m, log)
}

// provideExportRegistry 许可证可由配置或 NOTEBOOK_UNIOFFICE_LICENSE 提供
func provideExportRegistry(config *conf.Config) *export.Registry {
	key := config.Export.LicenseKey
	if key == "" {
		key = os.Getenv("NOTEBOOK_UNIOFFICE_LICENSE")
	}
	return export.NewRegistry(key)
}

// Template helpers

func provideTemplateRepo(config *conf.Config, log *logger.Logger) *templatedata.FileRepo {
	return templatedata.NewFileRepo(config.Templates.File, log)
}

func provideTemplateUseCase(
	repo *templatedata.FileRepo,
	documents *kbbiz.DocumentUseCase,
	extractor *kbbiz.ExtractUseCase,
	client *llm.Client,
	config *conf.Config,
	log *logger.Logger,
) *templatebiz.TemplateUseCase {
	return templatebiz.NewTemplateUseCase(repo, documents, extractor, client, config.Templates.MaxDocumentRunes, log)
}
