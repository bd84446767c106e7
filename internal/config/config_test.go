package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, os.TempDir(), cfg.UploadTempDir)
	assert.Equal(t, "http://127.0.0.1:9000/inkpost", cfg.S3.PublicURL)
	assert.Equal(t, "covers", cfg.S3.Prefix)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "k")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example/media")
	t.Setenv("S3_USE_PATH_STYLE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://cdn.example/media", cfg.S3.PublicURL)
	assert.False(t, cfg.S3.UsePathStyle)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveUploadLimit(t *testing.T) {
	t.Setenv("JWT_SECRET", "k")
	t.Setenv("MAX_UPLOAD_BYTES", "0")

	_, err := Load()
	require.Error(t, err)
}
