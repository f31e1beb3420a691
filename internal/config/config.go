// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	OpenAIKey       string   `yaml:"openai_key"`
	OpenAIBaseURL   string   `yaml:"openai_base_url"`
	GeminiKey       string   `yaml:"gemini_key"`
	GeminiURL       string   `yaml:"gemini_url"`
	DefaultModel    string   `yaml:"default_model"`
	ProviderOrder   []string `yaml:"provider_order"` // failover order, e.g. [openai, gemini]
	ConcurrentLimit int      `yaml:"concurrent_limit"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
}

type GenerationConfig struct {
	StatusTTL time.Duration `yaml:"status_ttl"` // progress record retention
	ResultTTL time.Duration `yaml:"result_ttl"` // completed itinerary cache window
}

type ResponseCacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`              // per-entry expiry; 0 = no expiry
	SweepInterval   time.Duration `yaml:"sweep_interval"`   // cleanup cadence
	SweepStartDelay time.Duration `yaml:"sweep_start_delay"`
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type ImageConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	AI            AIConfig            `yaml:"ai"`
	Generation    GenerationConfig    `yaml:"generation"`
	ResponseCache ResponseCacheConfig `yaml:"response_cache"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Image         ImageConfig         `yaml:"image"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if len(cfg.AI.ProviderOrder) == 0 {
		cfg.AI.ProviderOrder = []string{"openai", "gemini"}
	}
	if cfg.Generation.StatusTTL <= 0 {
		cfg.Generation.StatusTTL = 40 * time.Minute
	}
	if cfg.Generation.ResultTTL <= 0 {
		cfg.Generation.ResultTTL = 30 * time.Minute
	}
	if cfg.ResponseCache.SweepInterval <= 0 {
		cfg.ResponseCache.SweepInterval = 6 * time.Hour
	}
	if cfg.ResponseCache.SweepStartDelay <= 0 {
		cfg.ResponseCache.SweepStartDelay = 10 * time.Minute
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 10
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" {
		return nil, errors.New("at least one of ai.openai_key or ai.gemini_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
