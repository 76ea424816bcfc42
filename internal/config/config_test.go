package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9222", cfg.DebugURL)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.TraceDB)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LIMN_DEBUG_URL", "http://10.0.0.5:9333")
	t.Setenv("LIMN_TARGET_TITLE", "Brand Kit")
	t.Setenv("LIMN_REQUEST_TIMEOUT", "5s")
	t.Setenv("LIMN_TRACE_DB", "/tmp/limn-trace.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9333", cfg.DebugURL)
	assert.Equal(t, "Brand Kit", cfg.TargetTitle)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/limn-trace.db", cfg.TraceDB)
}

func TestLoad_RejectsBadTimeout(t *testing.T) {
	t.Setenv("LIMN_REQUEST_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIMN_REQUEST_TIMEOUT")
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LIMN_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		cfg := Config{LogLevel: name}
		level, err := cfg.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, want, level)
	}
}
