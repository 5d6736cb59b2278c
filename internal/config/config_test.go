package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOW_STOCK_THRESHOLD", "12")
	t.Setenv("NOTIFY_DEBOUNCE_WINDOW", "1h")

	cfg := Load()
	require.Equal(t, "redis:6380", cfg.Redis.Addr)
	require.Equal(t, 3, cfg.Redis.DB)
	require.Equal(t, 12, cfg.LowStock.Threshold)
	require.Equal(t, time.Hour, cfg.Notify.DebounceWindow)
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("LOW_STOCK_POLL_INTERVAL", "soon")

	cfg := Load()
	require.Equal(t, 0, cfg.Redis.DB)
	require.Equal(t, 5*time.Minute, cfg.LowStock.PollInterval)
}
