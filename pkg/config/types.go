package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Feeds   FeedsConfig   `mapstructure:"feeds"`
	Backups BackupsConfig `mapstructure:"backups"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// StorageConfig contains data folder and store tuning settings
type StorageConfig struct {
	DataDir       string        `mapstructure:"data_dir"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`      // in-memory store cache
	DebounceDelay time.Duration `mapstructure:"debounce_delay"` // debounced persistence
}

// FeedsConfig contains feed fetching settings
type FeedsConfig struct {
	Timeout               time.Duration `mapstructure:"timeout"`
	RetryAttempts         int           `mapstructure:"retry_attempts"`
	RetryInitialDelay     time.Duration `mapstructure:"retry_initial_delay"`
	RetryMaxDelay         time.Duration `mapstructure:"retry_max_delay"`
	RateLimit             int           `mapstructure:"rate_limit"` // requests per second
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
	UpdateInterval        time.Duration `mapstructure:"update_interval"`
	UserAgent             string        `mapstructure:"user_agent"`
	AllowInsecureFallback bool          `mapstructure:"allow_insecure_fallback"`
	MaxCacheEntries       int           `mapstructure:"max_cache_entries"`
	MaxImageCacheBytes    int64         `mapstructure:"max_image_cache_bytes"`
}

// BackupsConfig contains backup rotation settings
type BackupsConfig struct {
	Keep int `mapstructure:"keep"`
}
