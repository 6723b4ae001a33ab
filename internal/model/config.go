package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultUserAgent identifies as a desktop browser; several publisher sites
// reject default client identifiers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/90.0.4430.93 Safari/537.36"

// Config is the root configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Index        IndexConfig        `yaml:"index" mapstructure:"index"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Robots       RobotsConfig       `yaml:"robots" mapstructure:"robots"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig holds settings shared by the index and publisher clients
type HTTPConfig struct {
	AbstractTimeout time.Duration `yaml:"abstract_timeout" mapstructure:"abstract_timeout"` // Publisher page timeout
	IndexTimeout    time.Duration `yaml:"index_timeout" mapstructure:"index_timeout"`       // 0 = no timeout
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRedirects    int           `yaml:"max_redirects" mapstructure:"max_redirects"`
	HTTPProxy       string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy      string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy         string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// IndexConfig locates the bibliographic index
type IndexConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScoringConfig controls relevance matching
type ScoringConfig struct {
	Threshold  float64 `yaml:"threshold" mapstructure:"threshold"`
	TopAuthors int     `yaml:"top_authors" mapstructure:"top_authors"`
}

// ProviderConfig selects one embedding backend
type ProviderConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // ollama, openai, gemini
	Model      string        `yaml:"model,omitempty" mapstructure:"model"`
	Dimensions int           `yaml:"dimensions,omitempty" mapstructure:"dimensions"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey     string        `yaml:"-" mapstructure:"api_key"` // Never written to disk
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EmbeddingConfig holds the primary encoder and an optional fallback
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary" mapstructure:"primary"`
	Fallback ProviderConfig `yaml:"fallback" mapstructure:"fallback"`
}

// CacheConfig controls in-process memoization of embeddings and abstracts
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// RateLimitingConfig bounds requests per publisher host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// RobotsConfig controls robots.txt checks for publisher pages
type RobotsConfig struct {
	Respect bool `yaml:"respect" mapstructure:"respect"`
}

// ConcurrencyConfig controls how many independent runs a batch executes at once
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	JSONPath     string `yaml:"json_path,omitempty" mapstructure:"json_path"`
	MarkdownPath string `yaml:"markdown_path,omitempty" mapstructure:"markdown_path"`
}

// DefaultConfig returns the defaults used when nothing else is configured
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			AbstractTimeout: 10 * time.Second,
			IndexTimeout:    0,
			UserAgent:       DefaultUserAgent,
			MaxBodyBytes:    5_000_000,
			MaxRedirects:    5,
		},
		Index: IndexConfig{
			BaseURL: "https://dblp.org/search",
		},
		Scoring: ScoringConfig{
			Threshold:  0.4,
			TopAuthors: 20,
		},
		Embedding: EmbeddingConfig{
			Primary: ProviderConfig{
				Provider:   "ollama",
				Model:      "all-minilm",
				Dimensions: 384,
				BaseURL:    "http://localhost:11434",
				Timeout:    30 * time.Second,
			},
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 2,
		},
	}
}

// Validate rejects settings a run cannot start with
func (c *Config) Validate() error {
	if c.Scoring.Threshold < 0 || c.Scoring.Threshold >= 1 {
		return fmt.Errorf("scoring.threshold must be in [0,1), got %v", c.Scoring.Threshold)
	}
	if c.Scoring.TopAuthors < 0 {
		return fmt.Errorf("scoring.top_authors must not be negative")
	}
	if c.Index.BaseURL == "" {
		return fmt.Errorf("index.base_url is required")
	}
	switch strings.ToLower(c.Embedding.Primary.Provider) {
	case "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unknown embedding provider: %q (supported: ollama, openai, gemini)", c.Embedding.Primary.Provider)
	}
	return nil
}
