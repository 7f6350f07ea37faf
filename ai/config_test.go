package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_NormalizeAddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434"))
	cfg.Normalize()

	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)

	// Trailing slash is collapsed before the suffix is added.
	cfg = NewConfig(WithHost("http://localhost:11434/"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)

	// Already-normalized hosts are untouched.
	cfg = NewConfig(WithHost("http://localhost:11434/v1"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
}

func TestConfig_ValidateRejectsRemoteWithoutKeys(t *testing.T) {
	cfg := NewConfig(WithLocal(false))
	assert.ErrorIs(t, cfg.Validate(), ErrNoCredentials)

	cfg = NewConfig(WithLocal(false), WithAPIKeys("key-1"))
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ValidateLocalNeedsNoKeys(t *testing.T) {
	cfg := NewConfig()
	require.True(t, cfg.Local)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_CredentialCount(t *testing.T) {
	cfg := NewConfig(WithLocal(false), WithAPIKeys("a", "b", "c"))
	assert.Equal(t, 3, cfg.CredentialCount())

	cfg = NewConfig()
	assert.Equal(t, 1, cfg.CredentialCount())
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	cfg := NewConfig()
	cfg.GeneratorModel = ""
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.EmbeddingModel = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_CallTimeoutDefault(t *testing.T) {
	cfg := NewConfig(WithCallTimeout(0))
	cfg.Normalize()
	assert.Equal(t, 60*time.Second, cfg.CallTimeout)
}
