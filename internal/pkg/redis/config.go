package redis

import (
	"errors"
	"fmt"
	"time"
)

// Config 快照使用的单机 Redis 配置
type Config struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// DefaultConfig 本地默认值
func DefaultConfig() *Config {
	return &Config{
		Addr:         "localhost:6379",
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("redis: addr is required")
	case c.DB < 0 || c.DB > 15:
		return fmt.Errorf("redis: db %d out of range 0-15", c.DB)
	case c.PoolSize <= 0:
		return errors.New("redis: pool_size must be positive")
	case c.MinIdleConns < 0 || c.MinIdleConns > c.PoolSize:
		return errors.New("redis: min_idle_conns must be within 0..pool_size")
	case c.DialTimeout <= 0:
		return errors.New("redis: dial_timeout must be positive")
	case c.MaxRetries < 0:
		return errors.New("redis: max_retries must not be negative")
	}
	return nil
}
