package minio

import (
	"errors"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Config 上传文件所在的对象存储
type Config struct {
	Endpoint        string `mapstructure:"endpoint"` // host:port，不带协议
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`

	// RequestTimeout 单次对象操作的超时
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "localhost:9000",
		Bucket:         "notebook-uploads",
		RequestTimeout: defaultRequestTimeout,
	}
}

// Validate 凭据和桶名都是必填项
func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("minio: endpoint is required")
	case c.AccessKeyID == "" || c.SecretAccessKey == "":
		return errors.New("minio: access_key_id and secret_access_key are required")
	case c.Bucket == "":
		return errors.New("minio: bucket is required")
	}
	return nil
}

// SetDefaults 补齐未配置的超时
func (c *Config) SetDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
}
