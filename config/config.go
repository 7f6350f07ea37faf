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


package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/poiesic/newswire/ai"
)

// Config carries everything the pipeline needs from the environment.
type Config struct {
	// Object store.
	S3EndpointURL     string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	RawRoot           string

	// News store.
	DatabaseURL string

	// Generation and embedding backends.
	GeneratorHost  string
	GeneratorModel string
	EmbeddingHost  string
	EmbeddingModel string
	Local          bool
	APIKeys        []string
	CallTimeout    time.Duration

	// Pipeline tuning.
	LexicalThreshold   float64
	SemanticThreshold  float64
	SemanticWindow     time.Duration
	ItemsPerCredential int
	GroupSize          int
	CoolDown           time.Duration
	ItemDelay          time.Duration
	FailClosed         bool
}

// Load reads the environment, after merging in a .env file when present.
// Missing required variables are collected into a single error so a
// misconfigured deployment reports everything at once.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := Config{}
	var missingVars []string

	cfg.S3EndpointURL = getEnv("S3_ENDPOINT_URL", "")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "")
	cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3Bucket = getEnv("S3_BUCKET", "")
	cfg.RawRoot = getEnv("RAW_ROOT", "raw")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	if cfg.S3EndpointURL == "" {
		missingVars = append(missingVars, "S3_ENDPOINT_URL")
	}
	if cfg.S3AccessKeyID == "" {
		missingVars = append(missingVars, "S3_ACCESS_KEY_ID")
	}
	if cfg.S3SecretAccessKey == "" {
		missingVars = append(missingVars, "S3_SECRET_ACCESS_KEY")
	}
	if cfg.S3Bucket == "" {
		missingVars = append(missingVars, "S3_BUCKET")
	}
	if cfg.DatabaseURL == "" {
		missingVars = append(missingVars, "DATABASE_URL")
	}
	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	cfg.GeneratorHost = getEnv("GENAI_HOST", "http://localhost:11434")
	cfg.GeneratorModel = getEnv("GENAI_MODEL", "qwen2.5:3b")
	cfg.EmbeddingHost = getEnv("EMBEDDING_HOST", cfg.GeneratorHost)
	cfg.EmbeddingModel = getEnv("EMBEDDING_MODEL", "paraphrase-multilingual-minilm")
	cfg.Local = getBool("GENAI_LOCAL", false)
	cfg.APIKeys = collectAPIKeys()
	cfg.CallTimeout = getDuration("GENAI_CALL_TIMEOUT", 60*time.Second)

	if !cfg.Local && len(cfg.APIKeys) == 0 {
		return cfg, fmt.Errorf("remote generation backend configured with no credentials: %w", ai.ErrNoCredentials)
	}

	cfg.LexicalThreshold = getFloat("LEXICAL_THRESHOLD", 0.85)
	cfg.SemanticThreshold = getFloat("SEMANTIC_THRESHOLD", 0.85)
	cfg.SemanticWindow = getDuration("SEMANTIC_WINDOW", 48*time.Hour)
	cfg.ItemsPerCredential = getInt("ITEMS_PER_CREDENTIAL", 30)
	cfg.GroupSize = getInt("PACING_GROUP_SIZE", 10)
	cfg.CoolDown = getDuration("PACING_COOL_DOWN", 65*time.Second)
	cfg.ItemDelay = getDuration("PACING_ITEM_DELAY", time.Second)
	cfg.FailClosed = getBool("SEMANTIC_FAIL_CLOSED", false)

	return cfg, nil
}

// AIConfig converts the loaded environment into an ai.Config.
func (c Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithGeneratorHost(c.GeneratorHost),
		ai.WithGeneratorModel(c.GeneratorModel),
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithLocal(c.Local),
		ai.WithAPIKeys(c.APIKeys...),
		ai.WithCallTimeout(c.CallTimeout),
	)
}

// RunCap is the per-run enrichment bound scaled by the credential pool.
func (c Config) RunCap() int {
	return c.ItemsPerCredential * c.AIConfig().CredentialCount()
}

// collectAPIKeys gathers the credential pool: the base GENAI_API_KEY plus
// numbered GENAI_API_KEY_1, GENAI_API_KEY_2, ... variables. Discovery
// stops at the first gap in the numbering.
func collectAPIKeys() []string {
	var keys []string
	if key := os.Getenv("GENAI_API_KEY"); key != "" {
		keys = append(keys, key)
	}
	for i := 1; ; i++ {
		key := os.Getenv(fmt.Sprintf("GENAI_API_KEY_%d", i))
		if key == "" {
			break
		}
		keys = append(keys, key)
	}
	return keys
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer environment variable", "key", key, "value", raw, "error", err)
		return defaultVal
	}
	return value
}

func getFloat(key string, defaultVal float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid float environment variable", "key", key, "value", raw, "error", err)
		return defaultVal
	}
	return value
}

func getBool(key string, defaultVal bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean environment variable", "key", key, "value", raw, "error", err)
		return defaultVal
	}
	return value
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration environment variable", "key", key, "value", raw, "error", err)
		return defaultVal
	}
	return value
}
