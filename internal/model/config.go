package model

import "time"

// Config holds the complete urlsum configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Wikipedia WikipediaConfig `yaml:"wikipedia" mapstructure:"wikipedia"`
	Twitter   TwitterConfig   `yaml:"twitter" mapstructure:"twitter"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Serve     ServeConfig     `yaml:"serve" mapstructure:"serve"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures outbound requests to upstream APIs
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// WikipediaConfig configures the Wikipedia query API
type WikipediaConfig struct {
	// APIURL may contain {lang}, replaced by the language subdomain of the source URL
	APIURL string `yaml:"api_url" mapstructure:"api_url"`
}

// TwitterConfig configures the Twitter API v2 status lookup
type TwitterConfig struct {
	APIURL      string `yaml:"api_url" mapstructure:"api_url"`
	BearerToken string `yaml:"-" mapstructure:"bearer_token"` // From BEARER_TOKEN, never written out
}

// LLMConfig configures the summarization model
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`                 // huggingface, openai, anthropic, ollama, extractive
	Model          string `yaml:"model,omitempty" mapstructure:"model"`             // Provider-specific model name
	APIKey         string `yaml:"-" mapstructure:"api_key"`                         // From provider env var
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`       // Custom endpoint
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"`                   // Seconds
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`             // Summary length cap
	MaxInputTokens int    `yaml:"max_input_tokens" mapstructure:"max_input_tokens"` // 0 disables the check
}

// ServeConfig describes the HTTP deployment of the summarize route
type ServeConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	RoutePrefix     string        `yaml:"route_prefix" mapstructure:"route_prefix"`
	Replicas        int           `yaml:"replicas" mapstructure:"replicas"` // Max concurrent summarize requests, 0 = unlimited
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// CacheConfig configures the optional in-memory cache of fetched text
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig limits outbound requests per upstream host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "urlsum/0.1 (+https://github.com/ppiankov/urlsum)",
			MaxBodyBytes: 2_000_000,
		},
		Wikipedia: WikipediaConfig{
			APIURL: "https://{lang}.wikipedia.org/w/api.php",
		},
		Twitter: TwitterConfig{
			APIURL: "https://api.twitter.com/2/tweets",
		},
		LLM: LLMConfig{
			Provider:       "huggingface",
			Timeout:        60,
			MaxTokens:      142,
			MaxInputTokens: 1024,
		},
		Serve: ServeConfig{
			Addr:            ":8000",
			RoutePrefix:     "/summarize",
			Replicas:        16,
			ShutdownTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
