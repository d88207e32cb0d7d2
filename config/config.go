// Package config 加载服务配置：YAML 文件 + 环境变量覆盖（可选 .env 文件）。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 服务配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Form      FormConfig      `yaml:"form"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	GinMode         string        `yaml:"gin_mode"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ArtifactsConfig artifact 数据源配置
type ArtifactsConfig struct {
	Source  string        `yaml:"source"` // dir / http / redis
	Dir     string        `yaml:"dir"`
	BaseURL string        `yaml:"base_url"`
	Ext     string        `yaml:"ext"`
	Timeout time.Duration `yaml:"timeout"` // 启动加载超时
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig Redis 数据源配置
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled     bool `yaml:"enabled"`
	GoCollector bool `yaml:"go_collector"`
}

// TracingConfig 链路追踪配置，Endpoint 为空时不导出
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// FormConfig 表单层配置
type FormConfig struct {
	// Remap 字段名 -> CEL 改写表达式；为空时使用内置默认规则
	Remap map[string]string `yaml:"remap"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			GinMode:         "release",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Source:  "dir",
			Dir:     "artifacts",
			Ext:     ".json",
			Timeout: 30 * time.Second,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "inscost:artifact:",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			GoCollector: true,
		},
	}
}

// Load 加载配置：默认值 → YAML 文件（path 为空时跳过）→ .env / 环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFromYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	// Try to load .env file (optional)
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromYAML 从 YAML 文件读取配置，覆盖 cfg 中已有的值。
func LoadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !isSupported(c.Artifacts.Source) {
		return fmt.Errorf("unsupported artifact source %q (supported: %v)", c.Artifacts.Source, SupportedTypes())
	}
	if c.Artifacts.Timeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("artifacts.timeout and server.shutdown_timeout must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("INSCOST_SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsInt("INSCOST_SERVER_PORT", cfg.Server.Port)
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	if origins := getEnv("INSCOST_CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	cfg.Artifacts.Source = getEnv("INSCOST_ARTIFACT_SOURCE", cfg.Artifacts.Source)
	cfg.Artifacts.Dir = getEnv("INSCOST_ARTIFACT_DIR", cfg.Artifacts.Dir)
	cfg.Artifacts.BaseURL = getEnv("INSCOST_ARTIFACT_BASE_URL", cfg.Artifacts.BaseURL)
	cfg.Artifacts.Redis.Addr = getEnv("INSCOST_REDIS_ADDR", cfg.Artifacts.Redis.Addr)
	cfg.Artifacts.Redis.Password = getEnv("INSCOST_REDIS_PASSWORD", cfg.Artifacts.Redis.Password)
	cfg.Artifacts.Redis.DB = getEnvAsInt("INSCOST_REDIS_DB", cfg.Artifacts.Redis.DB)
	cfg.Artifacts.Redis.KeyPrefix = getEnv("INSCOST_REDIS_KEY_PREFIX", cfg.Artifacts.Redis.KeyPrefix)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SampleRatio = getEnvAsFloat("INSCOST_TRACE_SAMPLE_RATIO", cfg.Tracing.SampleRatio)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid float value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
