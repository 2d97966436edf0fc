// Package config loads dartrag settings from defaults, an optional YAML file
// and DARTRAG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`

	// Auth for the HTTP API
	APIKey string `mapstructure:"api_key"`

	// DART OpenAPI
	DartAPIKey        string        `mapstructure:"dart_api_key"`
	DartBaseURL       string        `mapstructure:"dart_base_url"`
	RetryAttempts     uint          `mapstructure:"retry_attempts"`
	RetryWait         time.Duration `mapstructure:"retry_wait"`
	TargetReportCodes []string      `mapstructure:"target_report_codes"`

	// Pathstore connection; storing is skipped when URL is empty.
	PathstoreURL    string `mapstructure:"pathstore_url"`
	PathstoreAPIKey string `mapstructure:"pathstore_api_key"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Chunking
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	CompetitorThreshold int    `mapstructure:"competitor_threshold"`
	MatrixSize          int    `mapstructure:"matrix_size"`
	DataDir             string `mapstructure:"data_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:                "8090",
		DartBaseURL:         "https://opendart.fss.or.kr/api",
		RetryAttempts:       3,
		RetryWait:           5 * time.Second,
		TargetReportCodes:   []string{"11011", "11012", "11013", "11014"},
		WorkerCount:         2,
		MaxQueueSize:        100,
		MaxUploadBytes:      52428800, // 50MB
		ChunkSize:           1500,
		ChunkOverlap:        200,
		JobTTL:              time.Hour,
		CompetitorThreshold: 2,
		MatrixSize:          100,
		DataDir:             "./data",
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// Load reads configuration. cfgFile may be empty, in which case
// ./config.yaml and $HOME/.dartrag/config.yaml are tried; a missing file is
// not an error.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("port", def.Port)
	v.SetDefault("api_key", "")
	v.SetDefault("dart_api_key", "")
	v.SetDefault("dart_base_url", def.DartBaseURL)
	v.SetDefault("retry_attempts", def.RetryAttempts)
	v.SetDefault("retry_wait", def.RetryWait)
	v.SetDefault("target_report_codes", def.TargetReportCodes)
	v.SetDefault("pathstore_url", "")
	v.SetDefault("pathstore_api_key", "")
	v.SetDefault("worker_count", def.WorkerCount)
	v.SetDefault("max_queue_size", def.MaxQueueSize)
	v.SetDefault("max_upload_bytes", def.MaxUploadBytes)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("chunk_overlap", def.ChunkOverlap)
	v.SetDefault("job_ttl", def.JobTTL)
	v.SetDefault("competitor_threshold", def.CompetitorThreshold)
	v.SetDefault("matrix_size", def.MatrixSize)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)

	v.SetEnvPrefix("DARTRAG")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.dartrag")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyFloors(def)
	return cfg, nil
}

func (c *Config) applyFloors(def Config) {
	if c.RetryAttempts == 0 {
		c.RetryAttempts = def.RetryAttempts
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = def.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = def.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = def.MaxUploadBytes
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = def.ChunkOverlap
	}
	if c.JobTTL <= 0 {
		c.JobTTL = def.JobTTL
	}
	if c.CompetitorThreshold <= 0 {
		c.CompetitorThreshold = def.CompetitorThreshold
	}
	if c.MatrixSize <= 0 {
		c.MatrixSize = def.MatrixSize
	}
	if len(c.TargetReportCodes) == 0 {
		c.TargetReportCodes = def.TargetReportCodes
	}
}

// ValidateServe checks what the HTTP server needs.
func (c Config) ValidateServe() error {
	if c.APIKey == "" {
		return fmt.Errorf("DARTRAG_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("DARTRAG_PATHSTORE_API_KEY is required when pathstore_url is set")
	}
	return nil
}

// ValidateFetch checks what DART downloads need.
func (c Config) ValidateFetch() error {
	if c.DartAPIKey == "" {
		return fmt.Errorf("DARTRAG_DART_API_KEY is required")
	}
	if c.DartBaseURL == "" {
		return fmt.Errorf("dart_base_url is required")
	}
	return nil
}
