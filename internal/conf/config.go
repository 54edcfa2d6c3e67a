package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/llm"
	"github.com/lk2023060901/ai-notebook-backend/internal/knowledge/segment"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/minio"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/redis"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 NOTEBOOK_SERVER_PORT
const EnvPrefix = "NOTEBOOK"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       logger.Config   `mapstructure:"log"`
	LLM       llm.Config      `mapstructure:"llm"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     redis.Config    `mapstructure:"redis"`
	Database  database.Config `mapstructure:"database"`
	MinIO     minio.Config    `mapstructure:"minio"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Export    ExportConfig    `mapstructure:"export"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	EnableMetrics   bool          `mapstructure:"enable_metrics"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RAGConfig 检索相关配置
type RAGConfig struct {
	ChunkSize       int            `mapstructure:"chunk_size" validate:"gt=0"`
	ChunkOverlap    int            `mapstructure:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	MaxResults      int            `mapstructure:"max_results" validate:"gt=0"`
	Workers         int            `mapstructure:"workers" validate:"gt=0"`
	ExtractCacheTTL time.Duration  `mapstructure:"extract_cache_ttl" validate:"gte=0"`
	Segment         segment.Config `mapstructure:"segment"`
}

// StorageConfig 上传文件存储
type StorageConfig struct {
	Backend       string `mapstructure:"backend" validate:"oneof=local minio"`
	UploadDir     string `mapstructure:"upload_dir" validate:"required"`
	Watch         bool   `mapstructure:"watch"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"gt=0"`
}

// StoreConfig 会话快照持久化
type StoreConfig struct {
	Backend      string `mapstructure:"backend" validate:"oneof=file redis postgres"`
	File         string `mapstructure:"file" validate:"required_if=Backend file"`
	RedisKey     string `mapstructure:"redis_key" validate:"required_if=Backend redis"`
	SnapshotName string `mapstructure:"snapshot_name" validate:"required_if=Backend postgres"`
}

type TemplatesConfig struct {
	File             string `mapstructure:"file" validate:"required"`
	MaxDocumentRunes int    `mapstructure:"max_document_runes" validate:"gt=0"`
}

type ExportConfig struct {
	// unioffice 计量许可证，为空时不设置
	LicenseKey string `mapstructure:"license_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.enable_metrics", true)

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.enablecaller", lc.EnableCaller)
	v.SetDefault("log.enablestacktrace", lc.EnableStacktrace)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.maxsize", lc.File.MaxSize)
	v.SetDefault("log.file.maxage", lc.File.MaxAge)
	v.SetDefault("log.file.maxbackups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)

	mc := llm.DefaultConfig()
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", mc.BaseURL)
	v.SetDefault("llm.default_model", mc.DefaultModel)
	v.SetDefault("llm.allowed_models", mc.AllowedModels)
	v.SetDefault("llm.temperature", mc.Temperature)
	v.SetDefault("llm.timeout", mc.Timeout)
	v.SetDefault("llm.count_tokens", false)

	v.SetDefault("rag.chunk_size", 800)
	v.SetDefault("rag.chunk_overlap", 100)
	v.SetDefault("rag.max_results", 8)
	v.SetDefault("rag.workers", 4)
	v.SetDefault("rag.extract_cache_ttl", 10*time.Minute)
	v.SetDefault("rag.segment.dict_files", []string{})
	v.SetDefault("rag.segment.hmm", true)

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.watch", true)
	v.SetDefault("storage.max_upload_size", 32<<20)

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.file", "mock_data.json")
	v.SetDefault("store.redis_key", "notebook:snapshot")
	v.SetDefault("store.snapshot_name", "default")

	rc := redis.DefaultConfig()
	v.SetDefault("redis.addr", rc.Addr)
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rc.DB)
	v.SetDefault("redis.pool_size", rc.PoolSize)
	v.SetDefault("redis.min_idle_conns", rc.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rc.DialTimeout)
	v.SetDefault("redis.read_timeout", rc.ReadTimeout)
	v.SetDefault("redis.write_timeout", rc.WriteTimeout)
	v.SetDefault("redis.max_retries", rc.MaxRetries)

	dc := database.DefaultConfig()
	v.SetDefault("database.host", dc.Host)
	v.SetDefault("database.port", dc.Port)
	v.SetDefault("database.user", dc.User)
	v.SetDefault("database.password", dc.Password)
	v.SetDefault("database.dbname", dc.DBName)
	v.SetDefault("database.sslmode", dc.SSLMode)
	v.SetDefault("database.timezone", dc.Timezone)
	v.SetDefault("database.maxidleconns", dc.MaxIdleConns)
	v.SetDefault("database.maxopenconns", dc.MaxOpenConns)
	v.SetDefault("database.connmaxlifetime", dc.ConnMaxLifetime)
	v.SetDefault("database.connecttimeout", dc.ConnectTimeout)
	v.SetDefault("database.loglevel", dc.LogLevel)
	v.SetDefault("database.slowthreshold", dc.SlowThreshold)
	v.SetDefault("database.automigrate", dc.AutoMigrate)

	oc := minio.DefaultConfig()
	v.SetDefault("minio.endpoint", oc.Endpoint)
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", oc.Bucket)
	v.SetDefault("minio.request_timeout", oc.RequestTimeout)

	v.SetDefault("templates.file", "templates_methods.json")
	v.SetDefault("templates.max_document_runes", 8000)

	v.SetDefault("export.license_key", "")
}

// LoadConfig 读取配置：默认值 < 配置文件 < 环境变量。path 为空时只用默认值和环境变量。
// 当前目录存在 .env 时先加载它。
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "DEEPSEEK_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	switch c.Store.Backend {
	case "redis":
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	case "postgres":
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if c.Storage.Backend == "minio" {
		if err := c.MinIO.Validate(); err != nil {
			return err
		}
	}
	return nil
}
