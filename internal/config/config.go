// Package config handles configuration loading for WealthWave.
// It supports YAML config files, a local .env file and environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/womenwealthwave/wealthwave/internal/calc"
	"github.com/womenwealthwave/wealthwave/internal/market"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "WEALTHWAVE"

// Config represents the complete application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"     json:"llm"`
	Chat    ChatConfig    `mapstructure:"chat"    yaml:"chat"    json:"chat"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"     json:"api"`
	Market  MarketConfig  `mapstructure:"market"  yaml:"market"  json:"market"`
	Tax     TaxConfig     `mapstructure:"tax"     yaml:"tax"     json:"tax"`
	Learn   LearnConfig   `mapstructure:"learn"   yaml:"learn"   json:"learn"`
	Web     WebConfig     `mapstructure:"web"     yaml:"web"     json:"web"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	file string
}

// LLMConfig holds the assistant's model provider settings.
type LLMConfig struct {
	Primary       string  `mapstructure:"primary"        yaml:"primary"        json:"primary"` // "ollama" or "openai"
	OllamaURL     string  `mapstructure:"ollama_url"     yaml:"ollama_url"     json:"ollama_url"`
	OpenAIKey     string  `mapstructure:"openai_key"     yaml:"openai_key"     json:"-"`
	OpenAIURL     string  `mapstructure:"openai_url"     yaml:"openai_url"     json:"openai_url"`
	Model         string  `mapstructure:"model"          yaml:"model"          json:"model"`
	FallbackModel string  `mapstructure:"fallback_model" yaml:"fallback_model" json:"fallback_model"`
	Temperature   float64 `mapstructure:"temperature"    yaml:"temperature"    json:"temperature"`
	TopP          float64 `mapstructure:"top_p"          yaml:"top_p"          json:"top_p"`
	MaxTokens     int     `mapstructure:"max_tokens"     yaml:"max_tokens"     json:"max_tokens"`
	TimeoutSec    int     `mapstructure:"timeout_sec"    yaml:"timeout_sec"    json:"timeout_sec"`
}

// Timeout returns the per-request LLM timeout.
func (c LLMConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// ChatConfig holds the remote chat client settings used by the CLI.
type ChatConfig struct {
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"    json:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// Timeout returns the chat request timeout.
func (c ChatConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string          `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int             `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string        `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"   yaml:"rate_limit"   json:"rate_limit"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool `mapstructure:"trust_proxy" yaml:"trust_proxy" json:"trust_proxy"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// RateLimitConfig shapes the per-client chat limiter: Burst requests, then
// one more every RefillSec seconds.
type RateLimitConfig struct {
	Burst     int `mapstructure:"burst"      yaml:"burst"      json:"burst"`
	RefillSec int `mapstructure:"refill_sec" yaml:"refill_sec" json:"refill_sec"`
}

// Refill returns the token refill period.
func (c RateLimitConfig) Refill() time.Duration { return seconds(c.RefillSec) }

// MarketConfig holds the simulated price feed settings.
type MarketConfig struct {
	IntervalSec int                 `mapstructure:"interval_sec" yaml:"interval_sec" json:"interval_sec"`
	Window      int                 `mapstructure:"window"       yaml:"window"       json:"window"`
	Instruments []market.Instrument `mapstructure:"instruments"  yaml:"instruments"  json:"instruments"`
}

// Interval returns the tick period.
func (c MarketConfig) Interval() time.Duration { return seconds(c.IntervalSec) }

// TaxConfig holds the income tax slab table. A slab with up_to 0 is the
// open-ended top slab.
type TaxConfig struct {
	Slabs calc.SlabTable `mapstructure:"slabs" yaml:"slabs" json:"slabs"`
}

// FeedSource is one RSS/Atom feed on the learn view's reading list.
type FeedSource struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url"  yaml:"url"  json:"url"`
}

// LearnConfig holds the reading-list feed settings.
type LearnConfig struct {
	Feeds       []FeedSource `mapstructure:"feeds"         yaml:"feeds"         json:"feeds"`
	CacheTTLSec int          `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec" json:"cache_ttl_sec"`
	TimeoutSec  int          `mapstructure:"timeout_sec"   yaml:"timeout_sec"   json:"timeout_sec"`
}

// CacheTTL returns how long fetched articles are reused.
func (c LearnConfig) CacheTTL() time.Duration { return seconds(c.CacheTTLSec) }

// Timeout returns the per-feed fetch timeout.
func (c LearnConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// WebConfig holds static frontend settings.
type WebConfig struct {
	DistDir string `mapstructure:"dist_dir" yaml:"dist_dir" json:"dist_dir"` // built SPA; empty disables serving
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// File returns the config file that was read, or "" when running on
// defaults and environment only.
func (c *Config) File() string { return c.file }

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.wealthwave/config.yaml (home directory)
//  3. /etc/wealthwave/config.yaml (system)
//
// A .env file in the working directory is loaded first; it never overrides
// variables already set. Environment variables override config file values.
// Format: WEALTHWAVE_<SECTION>_<KEY>, e.g., WEALTHWAVE_LLM_OPENAI_KEY
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".wealthwave"))
	v.AddConfigPath("/etc/wealthwave")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	applyFallbacks(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.file = v.ConfigFileUsed()

	overrideFromEnv(&cfg)
	applyFallbacks(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets sensible defaults for all scalar config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.primary", "ollama")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.openai_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "qwen2:0.5b")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.top_p", 0.9)
	v.SetDefault("llm.max_tokens", 300)
	v.SetDefault("llm.timeout_sec", 120)

	// Chat client defaults
	v.SetDefault("chat.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("chat.timeout_sec", 130)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("api.rate_limit.burst", 10)
	v.SetDefault("api.rate_limit.refill_sec", 6)
	v.SetDefault("api.trust_proxy", false)

	// Market defaults
	v.SetDefault("market.interval_sec", 12)
	v.SetDefault("market.window", market.DefaultWindow)

	// Learn defaults
	v.SetDefault("learn.cache_ttl_sec", 900)
	v.SetDefault("learn.timeout_sec", 15)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// applyFallbacks fills list-valued settings that viper defaults cannot
// express cleanly.
func applyFallbacks(cfg *Config) {
	if len(cfg.Market.Instruments) == 0 {
		cfg.Market.Instruments = market.DefaultInstruments()
	}
	if len(cfg.Tax.Slabs) == 0 {
		cfg.Tax.Slabs = calc.DefaultSlabs()
	}
	if len(cfg.Learn.Feeds) == 0 {
		cfg.Learn.Feeds = DefaultFeeds()
	}
}

// DefaultFeeds returns the built-in personal-finance reading list.
func DefaultFeeds() []FeedSource {
	return []FeedSource{
		{Name: "ET Wealth", URL: "https://economictimes.indiatimes.com/wealth/rssfeeds/837555174.cms"},
		{Name: "Mint Money", URL: "https://www.livemint.com/rss/money"},
		{Name: "RBI Press Releases", URL: "https://www.rbi.org.in/pressreleases_rss.xml"},
	}
}

// overrideFromEnv explicitly reads sensitive keys and the legacy backend
// variables from the environment.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_LLM_OPENAI_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.LLM.OpenAIKey == "" {
		cfg.LLM.OpenAIKey = key
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		cfg.LLM.OllamaURL = url
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if url := os.Getenv("VITE_API_BASE_URL"); url != "" {
		cfg.Chat.BaseURL = url
	}
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port %d out of range", c.API.Port)
	}
	if c.Market.IntervalSec < 1 {
		return fmt.Errorf("config: market.interval_sec must be at least 1")
	}
	if c.Market.Window < 1 {
		return fmt.Errorf("config: market.window must be at least 1")
	}
	for i, inst := range c.Market.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("config: market.instruments[%d] has no symbol", i)
		}
	}
	if err := c.Tax.Slabs.Validate(); err != nil {
		return fmt.Errorf("config: tax.slabs: %w", err)
	}
	switch c.LLM.Primary {
	case "ollama", "openai":
	default:
		return fmt.Errorf("config: llm.primary %q is not one of ollama, openai", c.LLM.Primary)
	}
	return nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
