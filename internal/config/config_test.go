package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, int64(5*1024*1024), cfg.UploadMaxBytes)
	assert.Equal(t, "/uploads", cfg.UploadBaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("RENDER_CACHE_SIZE", "32")
	t.Setenv("IMGUR_CLIENT_ID", "abc")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 32, cfg.RenderCacheSize)
	assert.Equal(t, "abc", cfg.ImgurClientID)
}
