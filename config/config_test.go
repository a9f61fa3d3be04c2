package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
	assert.Equal(t, 5, cfg.MaxImagesPerPost)
	assert.Equal(t, "v18.0", cfg.FacebookAPIVersion)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, int64(1048576), cfg.MaxUploadSize)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_FILES_PER_POST", "lots")
	t.Setenv("SWEEP_INTERVAL", "-5s")

	cfg := Load()

	assert.Equal(t, 5, cfg.MaxImagesPerPost)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
}
