package config

import (
	"os"
	"path/filepath"
	"testing"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/calculator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, analysis.DefaultConfig(), cfg.Indicators)
	assert.Equal(t, "csv", cfg.DataSource.Provider)
	assert.Equal(t, "data/yfinance_data", cfg.DataSource.PriceDir)
	assert.Equal(t, "outputs/technical", cfg.Output.TechnicalDir)
	assert.Equal(t, int32(6), cfg.Output.Precision)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.False(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
indicators:
  sma_period: 10
  strict_history: true
data_source:
  provider: rest
  base_url: http://prices.local
  tickers: [aapl, msft]
batch:
  workers: 2
`)
	t.Setenv("TICKERS", "NVDA, TSLA ,")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Indicators.SMAPeriod)
	assert.Equal(t, 50, cfg.Indicators.EMAPeriod, "unset windows keep defaults")
	assert.True(t, cfg.Indicators.StrictHistory)
	assert.Equal(t, []string{"NVDA", "TSLA"}, cfg.DataSource.Tickers)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.True(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("BATCH_WORKERS", "many")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "BATCH_WORKERS")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "indicators: [1, 2"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "ftp" }, "provider"},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }, "base_url"},
		{"workers", func(c *Config) { c.Batch.Workers = 100 }, "workers"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, "chat_id"},
		{"bad cron", func(c *Config) { c.Schedule.BatchCron = "every day" }, "batch_cron"},
		{"metrics addr", func(c *Config) { c.Metrics.ListenAddr = "nope" }, "listen_addr"},
		{"volatility window", func(c *Config) { c.Indicators.VolatilityWindow = 1 }, "volatility_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_MACDOrder(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Indicators.MACDFast = 26
	assert.ErrorIs(t, cfg.Validate(), calculator.ErrInvalidParameter)
}
