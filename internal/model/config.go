package model

import "time"

// Config holds the full runtime configuration.
type Config struct {
	Bridge      BridgeConfig      `yaml:"bridge" json:"bridge"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
}

// BridgeConfig configures the connection to the thermodynamic calculation
// service (the lab's scripting bridge in front of the commercial suite).
type BridgeConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	Database string        `yaml:"database" json:"database"` // e.g. "TCOX14"
	Pressure float64       `yaml:"pressure" json:"pressure"` // Pa
	MaxBytes int64         `yaml:"max_bytes" json:"max_bytes"`
}

// CacheConfig configures equilibrium-result caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig configures worker counts.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// RateLimitConfig throttles calls against the licensed bridge service.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// LLMConfig configures the optional report summarizer. The summary is
// generated after all numbers are computed and never feeds back into them.
type LLMConfig struct {
	Provider      string `yaml:"provider" json:"provider"` // "openai" or "" (disabled)
	Model         string `yaml:"model" json:"model"`
	APIKey        string `yaml:"-" json:"-"`
	BaseURL       string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	TimeoutSec    int    `yaml:"timeout_sec" json:"timeout_sec"`
	MaxTokens     int    `yaml:"max_tokens" json:"max_tokens"`
	StrictNumbers bool   `yaml:"strict_numbers" json:"strict_numbers"`
}

// DefaultConfig returns the built-in defaults. CLI flags and the config file
// override these through viper.
func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			BaseURL:  "http://localhost:8585",
			Timeout:  60 * time.Second,
			Database: "TCOX14",
			Pressure: 101325, // 1 atm
			MaxBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // resolved to ~/.ellingham/cache at startup
			TTL:     14 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:      "",
			Model:         "",
			TimeoutSec:    30,
			MaxTokens:     1000,
			StrictNumbers: true,
		},
	}
}
