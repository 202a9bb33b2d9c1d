package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("CSRF_SECRET", "csrf-secret")
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", " Memory ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "/storage", cfg.StorageURLPrefix)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "csrf secret")
}

func TestStorageURLPrefixIsNormalised(t *testing.T) {
	cfg := Config{SessionSecret: "s", CSRFSecret: "c", StoreDriver: "postgres", StorageURLPrefix: "files/"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/files", cfg.StorageURLPrefix)
}

func TestLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"}).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"}).Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
