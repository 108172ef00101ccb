// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Apollo     ApolloConfig     `yaml:"apollo" mapstructure:"apollo"`
	Hunter     HunterConfig     `yaml:"hunter" mapstructure:"hunter"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Resolver   ResolverConfig   `yaml:"resolver" mapstructure:"resolver"`
	Worker     WorkerConfig     `yaml:"worker" mapstructure:"worker"`
	Billing    BillingConfig    `yaml:"billing" mapstructure:"billing"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string           `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ApolloConfig holds Apollo API settings.
type ApolloConfig struct {
	Key       string           `yaml:"key" mapstructure:"key"`
	BaseURL   string           `yaml:"base_url" mapstructure:"base_url"`
	RateLimit search.RateLimit `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// HunterConfig holds Hunter API settings.
type HunterConfig struct {
	Key       string           `yaml:"key" mapstructure:"key"`
	BaseURL   string           `yaml:"base_url" mapstructure:"base_url"`
	RateLimit search.RateLimit `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key       string           `yaml:"key" mapstructure:"key"`
	BaseURL   string           `yaml:"base_url" mapstructure:"base_url"`
	Model     string           `yaml:"model" mapstructure:"model"`
	RateLimit search.RateLimit `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig tunes discovery and enrichment.
type SearchConfig struct {
	CompanyLimit           int `yaml:"company_limit" mapstructure:"company_limit"`
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ResolverConfig points at the email tier cascade definition.
type ResolverConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// WorkerConfig configures the background job processor and scheduled
// maintenance.
type WorkerConfig struct {
	Interval     time.Duration `yaml:"interval" mapstructure:"interval"`
	StaleAfter   time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
	ExecTimeout  time.Duration `yaml:"exec_timeout" mapstructure:"exec_timeout"`
	CleanupCron  string        `yaml:"cleanup_cron" mapstructure:"cleanup_cron"`
	RetryCron    string        `yaml:"retry_cron" mapstructure:"retry_cron"`
	JobsKeptDays int           `yaml:"jobs_kept_days" mapstructure:"jobs_kept_days"`
}

// BillingConfig holds per-action credit costs.
type BillingConfig struct {
	Enabled       bool `yaml:"enabled" mapstructure:"enabled"`
	CompanySearch int  `yaml:"company_search" mapstructure:"company_search"`
	ContactSearch int  `yaml:"contact_search" mapstructure:"contact_search"`
	EmailSearch   int  `yaml:"email_search" mapstructure:"email_search"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "prospector.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("search.company_limit", 10)
	v.SetDefault("search.max_concurrent_companies", 3)
	v.SetDefault("worker.interval", "30s")
	v.SetDefault("worker.stale_after", "5m")
	v.SetDefault("worker.exec_timeout", "2m")
	v.SetDefault("worker.cleanup_cron", "0 3 * * *")
	v.SetDefault("worker.retry_cron", "*/15 * * * *")
	v.SetDefault("worker.jobs_kept_days", 30)
	v.SetDefault("billing.enabled", true)
	v.SetDefault("billing.company_search", 1)
	v.SetDefault("billing.contact_search", 2)
	v.SetDefault("billing.email_search", 3)
	v.SetDefault("apollo.base_url", "https://api.apollo.io/api/v1")
	v.SetDefault("apollo.rate_limit.per_second", 2)
	v.SetDefault("apollo.rate_limit.burst", 4)
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.rate_limit.per_second", 5)
	v.SetDefault("hunter.rate_limit.burst", 10)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("perplexity.rate_limit.per_second", 1)
	v.SetDefault("perplexity.rate_limit.burst", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
