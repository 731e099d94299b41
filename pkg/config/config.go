// Package config provides configuration loading and validation utilities.
package config

import "time"

// Config holds runtime configuration for the budgetd service.
type Config struct {
	AppEnv string `mapstructure:"-"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`

	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScrapeConfig tunes the external market-data sources. All credentials come
// from configuration; nothing is embedded in code.
type ScrapeConfig struct {
	CostOfLivingBaseURL string `mapstructure:"cost_of_living_base_url" validate:"required,url"`
	TransitBaseURL      string `mapstructure:"transit_base_url" validate:"required,url"`
	OverpassBaseURL     string `mapstructure:"overpass_base_url" validate:"required,url"`
	SearchBaseURL       string `mapstructure:"search_base_url" validate:"required,url"`
	SearchAPIKey        string `mapstructure:"search_api_key"`

	Timeout    time.Duration `mapstructure:"timeout"`
	PacingWait time.Duration `mapstructure:"pacing_wait"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	InitialDelay   time.Duration `mapstructure:"initial_delay"`
	DriftThreshold float64       `mapstructure:"drift_threshold"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token" validate:"required_if=Enabled true"`
}

// RateLimitRule pairs a request budget with its sliding window.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	PerUser         RateLimitRule `mapstructure:"per_user"`
	Market          RateLimitRule `mapstructure:"market"`
	Whitelist       []int64       `mapstructure:"whitelist"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// applyDefaults fills values the YAML file may omit.
func (c *Config) applyDefaults() {
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Scrape.Timeout <= 0 {
		c.Scrape.Timeout = 8 * time.Second
	}
	if c.Scrape.PacingWait <= 0 {
		c.Scrape.PacingWait = time.Second
	}
	if c.Scrape.CacheTTL <= 0 {
		c.Scrape.CacheTTL = 24 * time.Hour
	}
	if c.Scheduler.Interval <= 0 {
		c.Scheduler.Interval = 24 * time.Hour
	}
	if c.Scheduler.InitialDelay <= 0 {
		c.Scheduler.InitialDelay = 5 * time.Second
	}
	if c.Scheduler.DriftThreshold <= 0 {
		c.Scheduler.DriftThreshold = 500
	}
	if c.RateLimit.PerUser.Limit <= 0 {
		c.RateLimit.PerUser = RateLimitRule{Limit: 60, Window: "1m"}
	}
	if c.RateLimit.Market.Limit <= 0 {
		c.RateLimit.Market = RateLimitRule{Limit: 10, Window: "1m"}
	}
	if c.RateLimit.CleanupInterval <= 0 {
		c.RateLimit.CleanupInterval = time.Hour
	}
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return "host=" + c.Postgres.Host +
		" port=" + c.Postgres.Port +
		" user=" + c.Postgres.User +
		" password=" + c.Postgres.Password +
		" dbname=" + c.Postgres.Name +
		" sslmode=" + c.Postgres.SSLMode
}
