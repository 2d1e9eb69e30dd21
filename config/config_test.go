package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyakov/macdbot/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "backtest:\n  symbol: ETHUSDT\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Backtest.Symbol)
	assert.Equal(t, "1h", cfg.Backtest.Interval)
	assert.Equal(t, 30, cfg.Backtest.Days)
	assert.Equal(t, 12, cfg.MACD.FastPeriod)
	assert.Equal(t, 26, cfg.MACD.SlowPeriod)
	assert.Equal(t, 9, cfg.MACD.SignalPeriod)
	assert.Equal(t, "macdbot.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLValuesWin(t *testing.T) {
	path := writeConfig(t, `
backtest:
  symbol: BTCUSDT
  interval: 4h
  days: 90
  quantity: 0.5
macd:
  fast_period: 8
  slow_period: 21
  signal_period: 5
storage:
  dsn: ":memory:"
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "4h", cfg.Backtest.Interval)
	assert.Equal(t, 90, cfg.Backtest.Days)
	assert.Equal(t, 0.5, cfg.Backtest.Quantity)
	assert.Equal(t, 8, cfg.MACD.FastPeriod)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BINANCE_BASE", "http://localhost:9999")

	path := writeConfig(t, "log:\n  level: info\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "http://localhost:9999", cfg.API.BinanceBase)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
