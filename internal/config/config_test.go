package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "importd.db", cfg.Store.SQLitePath)
	assert.EqualValues(t, 10, cfg.Store.MaxConns)
	assert.Equal(t, "postgres", cfg.Rates.Source)
	assert.Equal(t, 5, cfg.Quotes.ProviderTimeoutSecs)
	assert.Equal(t, 8, cfg.Quotes.MaxParallel)
	assert.EqualValues(t, 3500, cfg.Quotes.IndicativeUSD)
	assert.Equal(t, 30, cfg.Offers.ValidityDays)
	assert.Equal(t, 60, cfg.Offers.SweepMinutes)
	assert.Equal(t, 30, cfg.Ratesheet.FTPTimeoutSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 10.0, cfg.Server.QuoteRPS, 0.001)
	assert.Equal(t, 20, cfg.Server.QuoteBurst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /var/lib/importd/offers.db
offers:
  validity_days: 14
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/importd/offers.db", cfg.Store.SQLitePath)
	assert.Equal(t, 14, cfg.Offers.ValidityDays)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Quotes.ProviderTimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
offers:
  validity_days: 14
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("IMPORTD_STORE_DRIVER", "postgres")
	t.Setenv("IMPORTD_OFFERS_VALIDITY_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 7, cfg.Offers.ValidityDays)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"bad level", LogConfig{Level: "verbose", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, zap.L())
		})
	}
}
