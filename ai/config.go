// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// GeneratorHost is the base URL for the generation service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible
	// server, or a hosted multi-key endpoint.
	GeneratorHost string

	// GeneratorModel is the model identifier used for enrichment.
	// Example: "qwen2.5:3b", "gemini-2.5-flash"
	GeneratorModel string

	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string

	// EmbeddingModel is the model identifier used for embeddings.
	// Must produce vectors of core.EmbeddingDim dimensions.
	EmbeddingModel string

	// APIKeys is the ordered credential pool for a remote generation
	// backend, tried in order on failure. Ignored when Local is true.
	APIKeys []string

	// Local marks the generation backend as a locally hosted model that
	// needs no credentials; a single bounded-time inference is performed
	// per call instead of credential rotation.
	Local bool

	// CallTimeout bounds each individual backend call.
	// Default: 60s.
	CallTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithGeneratorHost sets the generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithGeneratorModel sets the generation model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

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

// WithHost sets both generator and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
		c.EmbeddingHost = host
	}
}

// WithAPIKeys sets the credential pool for a remote backend.
func WithAPIKeys(keys ...string) ConfigOption {
	return func(c *Config) {
		c.APIKeys = keys
	}
}

// WithLocal marks the backend as locally hosted (no credentials).
func WithLocal(local bool) ConfigOption {
	return func(c *Config) {
		c.Local = local
	}
}

// WithCallTimeout bounds individual backend calls.
func WithCallTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.CallTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible server.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		GeneratorHost:  defaultHost,
		GeneratorModel: "qwen2.5:3b",
		EmbeddingHost:  defaultHost,
		EmbeddingModel: "paraphrase-multilingual-minilm",
		Local:          true,
		CallTimeout:    60 * time.Second,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// CredentialCount reports the effective size of the credential pool.
// A local backend behaves as a pool of one.
func (c *Config) CredentialCount() int {
	if c.Local {
		return 1
	}
	return len(c.APIKeys)
}

// Normalize ensures hosts carry the /v1 suffix required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, hosted gateways).
func (c *Config) Normalize() {
	if c.GeneratorHost != "" && !strings.HasSuffix(c.GeneratorHost, "/v1") {
		c.GeneratorHost = strings.TrimSuffix(c.GeneratorHost, "/") + "/v1"
	}
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 60 * time.Second
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first. A remote backend with an empty
// credential pool is rejected: the pipeline must refuse to start.
func (c *Config) Validate() error {
	c.Normalize()

	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if !c.Local && len(c.APIKeys) == 0 {
		return ErrNoCredentials
	}
	return nil
}
