package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "DATABASE_URL", "REDIS_ADDR",
		"STORAGE_BUCKET", "EMBEDDING_MODEL", "QUOTA_FREE_MAX_PAGES", "QUOTA_PRO_MAX_PAGES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "documents", cfg.Storage.Bucket)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 5, cfg.Quota.FreeMaxPages)
	assert.Equal(t, 25, cfg.Quota.ProMaxPages)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("QUOTA_FREE_MAX_PAGES", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Quota.FreeMaxPages)
}

func TestLoad_BadIntFails(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "UPLOAD_CALLBACK_SECRET")
}

func TestValidate_Complete(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URL = "postgres://localhost/app"
	cfg.Auth.JWTSecret = "secret"
	cfg.Storage.CallbackSecret = "callback"
	assert.NoError(t, cfg.Validate())
}
