package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
)

// Config holds all configuration for the question answering server.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3443"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL row store)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional FileProfile cache)
	Redis RedisConfig `yaml:"redis"`

	// Engine tunables
	Insights InsightsConfig `yaml:"insights"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"rms"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"rms_insights"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	// StatementTimeoutSeconds bounds every statement, push-down aggregates included. 0 disables.
	StatementTimeoutSeconds int `yaml:"statement_timeout_seconds" env:"PGSTATEMENT_TIMEOUT_SECONDS" env-default:"30"`
}

// RedisConfig holds Redis configuration. An empty host disables the cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// InsightsConfig holds the question answering engine tunables.
type InsightsConfig struct {
	// RowLimit caps rows materialized by the in-memory strategy (minimum 1000).
	RowLimit int `yaml:"row_limit" env:"INSIGHTS_ROW_LIMIT" env-default:"25000"`
	// ProfileSampleRows is how many rows are sampled when building a FileProfile.
	ProfileSampleRows int `yaml:"profile_sample_rows" env:"INSIGHTS_PROFILE_SAMPLE_ROWS" env-default:"800"`
	// ResolverSampleRows is how many rows are sampled for ad hoc column classification.
	ResolverSampleRows int `yaml:"resolver_sample_rows" env:"INSIGHTS_RESOLVER_SAMPLE_ROWS" env-default:"400"`
	// InferenceSampleRows is how many rows value-driven inference scans.
	InferenceSampleRows int `yaml:"inference_sample_rows" env:"INSIGHTS_INFERENCE_SAMPLE_ROWS" env-default:"500"`
	// InferenceMaxColumns caps the columns value-driven inference inspects.
	InferenceMaxColumns int     `yaml:"inference_max_columns" env:"INSIGHTS_INFERENCE_MAX_COLUMNS" env-default:"50"`
	NumericThreshold    float64 `yaml:"numeric_threshold" env:"INSIGHTS_NUMERIC_THRESHOLD" env-default:"0.6"`
	CategoricalMax      float64 `yaml:"categorical_threshold" env:"INSIGHTS_CATEGORICAL_THRESHOLD" env-default:"0.35"`
	DefaultTopN         int     `yaml:"default_top_n" env:"INSIGHTS_DEFAULT_TOP_N" env-default:"5"`
	MaxTopN             int     `yaml:"max_top_n" env:"INSIGHTS_MAX_TOP_N" env-default:"20"`
	FetchBatchSize      int     `yaml:"fetch_batch_size" env:"INSIGHTS_FETCH_BATCH_SIZE" env-default:"1000"`
	// FileConcurrency bounds how many files of a project are answered in parallel.
	// The default of 1 answers them in sequence.
	FileConcurrency int `yaml:"file_concurrency" env:"INSIGHTS_FILE_CONCURRENCY" env-default:"1"`
	// RowDataPath is a comma separated JSON path under which stored rows keep their cells.
	// Empty means cells live at the top level of the stored row object.
	RowDataPath string `yaml:"row_data_path" env:"INSIGHTS_ROW_DATA_PATH" env-default:""`
	// PushdownEnabled toggles the row-store aggregation strategy.
	PushdownEnabled bool `yaml:"pushdown_enabled" env:"INSIGHTS_PUSHDOWN_ENABLED" env-default:"true"`
	// ProfileCacheTTLMinutes is how long Redis keeps a cached FileProfile.
	ProfileCacheTTLMinutes int `yaml:"profile_cache_ttl_minutes" env:"INSIGHTS_PROFILE_CACHE_TTL_MINUTES" env-default:"60"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// A missing config.yaml is not an error: defaults and environment variables apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// Fall back to env-only configuration when no YAML file is present
		if envErr := cleanenv.ReadEnv(cfg); envErr != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", envErr)
		}
	}

	cfg.Database.Host = ResolveHostForDocker(cfg.Database.Host)
	cfg.Redis.Host = ResolveHostForDocker(cfg.Redis.Host)

	if err := cfg.Insights.validate(); err != nil {
		return nil, fmt.Errorf("invalid insights configuration: %w", err)
	}

	return cfg, nil
}

// validate rejects thresholds that would make column classification meaningless.
func (c *InsightsConfig) validate() error {
	if c.NumericThreshold <= 0 || c.NumericThreshold > 1 {
		return fmt.Errorf("numeric_threshold must be in (0,1], got %v", c.NumericThreshold)
	}
	if c.CategoricalMax < 0 || c.CategoricalMax >= c.NumericThreshold {
		return fmt.Errorf("categorical_threshold must be in [0,numeric_threshold), got %v", c.CategoricalMax)
	}
	for _, seg := range c.dataPath() {
		if seg == "" {
			return fmt.Errorf("row_data_path contains an empty segment: %q", c.RowDataPath)
		}
	}
	return nil
}

func (c *InsightsConfig) dataPath() []string {
	if strings.TrimSpace(c.RowDataPath) == "" {
		return nil
	}
	parts := strings.Split(c.RowDataPath, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// EngineConfig converts the YAML/env tunables into the engine's configuration object.
func (c *InsightsConfig) EngineConfig() insights.Config {
	ec := insights.Config{
		RowLimit:             c.RowLimit,
		ProfileSampleRows:    c.ProfileSampleRows,
		ResolverSampleRows:   c.ResolverSampleRows,
		InferenceSampleRows:  c.InferenceSampleRows,
		InferenceMaxColumns:  c.InferenceMaxColumns,
		NumericThreshold:     c.NumericThreshold,
		CategoricalThreshold: c.CategoricalMax,
		DefaultTopN:          c.DefaultTopN,
		MaxTopN:              c.MaxTopN,
		FetchBatchSize:       c.FetchBatchSize,
		FileConcurrency:      c.FileConcurrency,
		RowDataPath:          c.dataPath(),
	}
	return ec.Normalize()
}

// StatementTimeout returns the per-statement limit for pooled connections.
func (c *DatabaseConfig) StatementTimeout() time.Duration {
	if c.StatementTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}

// ProfileCacheTTL returns the Redis TTL for cached profiles.
func (c *InsightsConfig) ProfileCacheTTL() time.Duration {
	if c.ProfileCacheTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.ProfileCacheTTLMinutes) * time.Minute
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the Redis host:port address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
