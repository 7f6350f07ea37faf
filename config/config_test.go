package config

import (
	"testing"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("S3_ENDPOINT_URL", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "minio")
	t.Setenv("S3_SECRET_ACCESS_KEY", "minio123")
	t.Setenv("S3_BUCKET", "news")
	t.Setenv("DATABASE_URL", "postgres://localhost/news")
	t.Setenv("GENAI_LOCAL", "true")
}

func TestLoad_MissingRequiredVarsCollected(t *testing.T) {
	t.Setenv("S3_ENDPOINT_URL", "")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_ENDPOINT_URL")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "raw", cfg.RawRoot)
	assert.Equal(t, 0.85, cfg.LexicalThreshold)
	assert.Equal(t, 0.85, cfg.SemanticThreshold)
	assert.Equal(t, 48*time.Hour, cfg.SemanticWindow)
	assert.Equal(t, 30, cfg.ItemsPerCredential)
	assert.Equal(t, 10, cfg.GroupSize)
	assert.Equal(t, 65*time.Second, cfg.CoolDown)
	assert.False(t, cfg.FailClosed)
}

func TestLoad_NumberedKeyDiscovery(t *testing.T) {
	setRequired(t)
	t.Setenv("GENAI_LOCAL", "false")
	t.Setenv("GENAI_API_KEY", "key-0")
	t.Setenv("GENAI_API_KEY_1", "key-1")
	t.Setenv("GENAI_API_KEY_2", "key-2")
	// Gap: _4 must not be discovered without _3.
	t.Setenv("GENAI_API_KEY_4", "key-4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"key-0", "key-1", "key-2"}, cfg.APIKeys)
	assert.Equal(t, 90, cfg.RunCap())
}

func TestLoad_RemoteWithoutKeysFails(t *testing.T) {
	setRequired(t)
	t.Setenv("GENAI_LOCAL", "false")

	_, err := Load()
	assert.ErrorIs(t, err, ai.ErrNoCredentials)
}

func TestLoad_LocalBackendNeedsNoKeys(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RunCap())

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, 1, aiCfg.CredentialCount())
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("ITEMS_PER_CREDENTIAL", "lots")
	t.Setenv("SEMANTIC_THRESHOLD", "0.9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.ItemsPerCredential)
	assert.Equal(t, 0.9, cfg.SemanticThreshold)
}
