package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "farm_rakshaa", cfg.MongoDB)
	assert.True(t, cfg.VetAutoApprove)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "farm-documents", cfg.Minio.Bucket)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "3001")
	t.Setenv("VET_AUTO_APPROVE", "false")
	t.Setenv("MINIO_BUCKET", "docs")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.VetAutoApprove)
	assert.Equal(t, "docs", cfg.Minio.Bucket)
}
