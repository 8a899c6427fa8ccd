package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	APIKey       string
	BaseURL      string
	MarketURL    string
	MarketTop    int
	PollInterval time.Duration
	HTTPTimeout  time.Duration
	Debounce     time.Duration
	LogLevel     string
}

var globalConfig *Config

// Load reads configuration from environment variables and an optional
// .swapdesk.yaml config file. A missing API key is not an error here:
// browsing endpoints work without one, and exchange creation reports a
// configuration error at the point of use.
func Load() (*Config, error) {
	viper.SetConfigName(".swapdesk")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("base_url", "https://api.simpleswap.io/v1")
	viper.SetDefault("market_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("market_top", 250)
	viper.SetDefault("poll_interval", "10s")
	viper.SetDefault("http_timeout", "15s")
	viper.SetDefault("debounce", "500ms")
	viper.SetDefault("log_level", "warn")

	viper.SetEnvPrefix("SWAPDESK")
	viper.AutomaticEnv()

	// Config file is optional
	_ = viper.ReadInConfig()

	cfg := &Config{
		APIKey:       viper.GetString("api_key"),
		BaseURL:      viper.GetString("base_url"),
		MarketURL:    viper.GetString("market_url"),
		MarketTop:    viper.GetInt("market_top"),
		PollInterval: viper.GetDuration("poll_interval"),
		HTTPTimeout:  viper.GetDuration("http_timeout"),
		Debounce:     viper.GetDuration("debounce"),
		LogLevel:     viper.GetString("log_level"),
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration, loading it on first use
func Get() *Config {
	if globalConfig == nil {
		cfg, _ := Load()
		globalConfig = cfg
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
