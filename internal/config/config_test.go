package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-test-secret-of-sufficient-length-123456")
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UPLOAD_DIR", "/tmp/uploads")

	cfg := Load()

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/uploads", cfg.UploadDir)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Same(t, cfg, C)
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("SOME_UNSET_KEY", "")
	assert.Equal(t, "fallback", getEnv("SOME_UNSET_KEY", "fallback"))

	t.Setenv("SOME_SET_KEY", "value")
	assert.Equal(t, "value", getEnv("SOME_SET_KEY", "fallback"))
}
