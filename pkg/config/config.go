package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		setDefaults()

		// Environment variable overrides
		viper.SetEnvPrefix("PODKEEP")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			// Missing config file is fine - defaults and env vars apply
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("storage.data_dir") == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}

	// Auto-correct invalid retry count
	if viper.GetInt("feeds.retry_attempts") <= 0 {
		viper.Set("feeds.retry_attempts", 3)
	}

	// Auto-correct invalid rate limit
	if viper.GetInt("feeds.rate_limit") <= 0 {
		viper.Set("feeds.rate_limit", 5)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}

	if c.Feeds.RetryAttempts <= 0 {
		c.Feeds.RetryAttempts = 3
	}

	if c.Feeds.RateLimit <= 0 {
		c.Feeds.RateLimit = 5
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Storage defaults
	viper.SetDefault("storage.data_dir", "./data")
	viper.SetDefault("storage.cache_ttl", 2*time.Second)
	viper.SetDefault("storage.debounce_delay", 1*time.Second)

	// Feed fetching defaults
	viper.SetDefault("feeds.timeout", 30*time.Second)
	viper.SetDefault("feeds.retry_attempts", 3)
	viper.SetDefault("feeds.retry_initial_delay", 1*time.Second)
	viper.SetDefault("feeds.retry_max_delay", 10*time.Second)
	viper.SetDefault("feeds.rate_limit", 5)
	viper.SetDefault("feeds.cache_ttl", 1*time.Hour)
	viper.SetDefault("feeds.update_interval", 1*time.Hour)
	viper.SetDefault("feeds.user_agent", "podkeep/1.0")
	viper.SetDefault("feeds.allow_insecure_fallback", true)
	viper.SetDefault("feeds.max_cache_entries", 200)
	viper.SetDefault("feeds.max_image_cache_bytes", 104857600)

	// Backup defaults
	viper.SetDefault("backups.keep", 5)
}
