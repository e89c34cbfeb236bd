package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"KENJECT_REFRESH_INTERVAL",
		"KENJECT_WAIT_TIMEOUT",
		"KENJECT_LOG",
		"KENJECT_LOG_PRETTY",
	} {
		os.Unsetenv(k)
	}

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.WaitTimeout)
	assert.Equal(t, "", cfg.LogPath)
	assert.False(t, cfg.LogPretty)
}

func TestLoadFromEnvironment(t *testing.T) {
	os.Setenv("KENJECT_REFRESH_INTERVAL", "500ms")
	os.Setenv("KENJECT_WAIT_TIMEOUT", "0s")
	os.Setenv("KENJECT_LOG", "-")
	os.Setenv("KENJECT_LOG_PRETTY", "true")
	defer func() {
		os.Unsetenv("KENJECT_REFRESH_INTERVAL")
		os.Unsetenv("KENJECT_WAIT_TIMEOUT")
		os.Unsetenv("KENJECT_LOG")
		os.Unsetenv("KENJECT_LOG_PRETTY")
	}()

	cfg := Load()
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, time.Duration(0), cfg.WaitTimeout, "0 means wait forever")
	assert.Equal(t, "-", cfg.LogPath)
	assert.True(t, cfg.LogPretty)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	os.Setenv("KENJECT_REFRESH_INTERVAL", "soon")
	os.Setenv("KENJECT_WAIT_TIMEOUT", "-5s")
	os.Setenv("KENJECT_LOG_PRETTY", "maybe")
	defer func() {
		os.Unsetenv("KENJECT_REFRESH_INTERVAL")
		os.Unsetenv("KENJECT_WAIT_TIMEOUT")
		os.Unsetenv("KENJECT_LOG_PRETTY")
	}()

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.WaitTimeout)
	assert.False(t, cfg.LogPretty)
}
