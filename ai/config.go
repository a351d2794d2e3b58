package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for the embedding service.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `yaml:"embedding_host"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	EmbeddingModel string `yaml:"embedding_model"`

	// APIKey authenticates against hosted services. Local servers accept
	// any token, so an empty key is sent as "none".
	APIKey string `yaml:"api_key"`

	// BatchSize caps how many texts go into one embedding request.
	// Zero leaves the client default in place.
	BatchSize int `yaml:"batch_size"`
}

// ConfigOption is a functional option for configuring Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBatchSize sets the number of texts sent per embedding request.
func WithBatchSize(n int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// DefaultConfig returns a configuration for a local Ollama server.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "nomic-embed-text",
	}
}

// NewConfig creates a new Config with default values and applies the given options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the host URL ends with /v1 for OpenAI-compatible APIs.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Token returns the API key, or "none" when no key is configured.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return "none"
	}
	return c.APIKey
}

// Validate normalizes the configuration and checks required fields.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.BatchSize < 0 {
		return errors.New("ai config: BatchSize must not be negative")
	}
	return nil
}
