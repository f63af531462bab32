package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Upstream  Upstream  `mapstructure:"upstream"`
	Dashboard Dashboard `mapstructure:"dashboard"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Journal   Journal   `mapstructure:"journal"`
}

// Upstream holds the configuration for the two remote trading hosts.
// Equity endpoints live on the legacy host, options/futures transaction
// endpoints on the newer trading host.
type Upstream struct {
	EquityBaseURL     string  `mapstructure:"equity_base_url"`
	TradingBaseURL    string  `mapstructure:"trading_base_url"`
	WebhookURL        string  `mapstructure:"webhook_url"`
	FuturesWebhookURL string  `mapstructure:"futures_webhook_url"`
	RateLimit         float64 `mapstructure:"rate_limit"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the dashboard web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Journal holds the configuration for the local action journal.
type Journal struct {
	DSN string `mapstructure:"dsn"`
}

// Dashboard holds the view-state knobs.
type Dashboard struct {
	FuturesPageSize int `mapstructure:"futures_page_size"`
	ToastTTLSeconds int `mapstructure:"toast_ttl_seconds"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("upstream.rate_limit", 10)      // requests per second
	viper.SetDefault("upstream.rate_limit_burst", 5) // burst size
	viper.SetDefault("dashboard.futures_page_size", 200)
	viper.SetDefault("dashboard.toast_ttl_seconds", 3)
	viper.SetDefault("journal.dsn", "dashboard.db")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
