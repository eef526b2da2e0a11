package config

import (
	"testing"
	"time"

	"tradecraft/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "./data/journal.db", cfg.DBPath)
	assert.Equal(t, "America/New_York", cfg.Timezone.String())
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, "json", cfg.LogFormat)
}
