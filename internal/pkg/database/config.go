package database

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config PostgreSQL 快照库配置
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`

	MaxIdleConns    int           `mapstructure:"maxidleconns"`
	MaxOpenConns    int           `mapstructure:"maxopenconns"`
	ConnMaxLifetime time.Duration `mapstructure:"connmaxlifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connecttimeout"`

	LogLevel      string        `mapstructure:"loglevel"` // silent | error | warn | info
	SlowThreshold time.Duration `mapstructure:"slowthreshold"`
	AutoMigrate   bool          `mapstructure:"automigrate"`
}

// DefaultConfig 本地开发默认值。快照只有一行，连接池不需要很大。
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "notebook",
		SSLMode:  "disable",
		Timezone: "Asia/Shanghai",

		MaxIdleConns:    2,
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnectTimeout:  5 * time.Second,

		LogLevel:      "warn",
		SlowThreshold: 200 * time.Millisecond,
		AutoMigrate:   true,
	}
}

var (
	sslModes  = []string{"disable", "require", "verify-ca", "verify-full"}
	logLevels = []string{"silent", "error", "warn", "info"}
)

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("database host is required")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("database port %d out of range", c.Port)
	case c.User == "":
		return errors.New("database user is required")
	case c.DBName == "":
		return errors.New("database name is required")
	case !oneOf(c.SSLMode, sslModes):
		return fmt.Errorf("database sslmode must be one of %s", strings.Join(sslModes, ", "))
	case !oneOf(c.LogLevel, logLevels):
		return fmt.Errorf("database loglevel must be one of %s", strings.Join(logLevels, ", "))
	case c.MaxIdleConns < 0 || c.MaxOpenConns < 0:
		return errors.New("database pool sizes must not be negative")
	case c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns:
		return errors.New("database maxidleconns exceeds maxopenconns")
	case c.ConnectTimeout < 0:
		return errors.New("database connecttimeout must not be negative")
	}
	return nil
}

// DSN 生成 pgx 连接串
func (c *Config) DSN() string {
	parts := []string{
		"host=" + c.Host,
		fmt.Sprintf("port=%d", c.Port),
		"user=" + c.User,
		"password=" + c.Password,
		"dbname=" + c.DBName,
		"sslmode=" + c.SSLMode,
	}
	if c.Timezone != "" {
		parts = append(parts, "TimeZone="+c.Timezone)
	}
	return strings.Join(parts, " ")
}
