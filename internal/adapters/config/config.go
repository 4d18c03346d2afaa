package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	CoinGecko CoinGeckoConfig `envconfig:"COINGECKO"`
	Nansen    NansenConfig    `envconfig:"NANSEN"`
	Twitter   TwitterConfig   `envconfig:"TWITTER"`
	Grok      GrokConfig      `envconfig:"GROK"`
	Assistant AssistantConfig `envconfig:"ASSISTANT"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Telegram  TelegramConfig  `envconfig:"TELEGRAM"`
	Logging   LoggingConfig   `envconfig:"LOGGING"`
}

// CoinGeckoConfig represents the price/search provider. The API key is
// optional; without it the free-tier endpoint is used (rate limited).
type CoinGeckoConfig struct {
	APIKey string `envconfig:"API_KEY" required:"false"`
}

// NansenConfig represents the smart-money flow provider. Without a key the
// flow data source degrades to an explanatory placeholder.
type NansenConfig struct {
	APIKey string `envconfig:"API_KEY" required:"false"`
}

// TwitterConfig represents the social search provider.
type TwitterConfig struct {
	BearerToken string `envconfig:"BEARER_TOKEN" required:"false"`
}

// GrokConfig represents the text-completion provider. Without a key every
// turn uses the deterministic templated response.
type GrokConfig struct {
	APIKey      string  `envconfig:"API_KEY" required:"false"`
	Model       string  `envconfig:"MODEL" default:"grok-4-0709"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" default:"1000"`
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.7"`
}

// AssistantConfig represents turn-handling parameters
type AssistantConfig struct {
	SentimentSampleSize int `envconfig:"SENTIMENT_SAMPLE_SIZE" default:"50"`
	HistoryLimit        int `envconfig:"HISTORY_LIMIT" default:"10"`
}

// RedisConfig represents the optional coin-resolution cache. Empty Addr
// keeps resolution caching in memory.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" required:"false"`
	Password string `envconfig:"PASSWORD" required:"false"`
	DB       int    `envconfig:"DB" default:"0"`
}

// TelegramConfig represents the Telegram gateway (cmd/bot only)
type TelegramConfig struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"false"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Assistant.SentimentSampleSize < 1 {
		return fmt.Errorf("sentiment_sample_size must be at least 1")
	}
	if c.Assistant.HistoryLimit < 2 || c.Assistant.HistoryLimit%2 != 0 {
		return fmt.Errorf("history_limit must be a positive even number")
	}
	if c.Grok.MaxTokens < 1 {
		return fmt.Errorf("grok max_tokens must be positive")
	}
	return nil
}
