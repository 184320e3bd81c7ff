package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fasterbrick/FetchOHLCMT5/market"
)

func TestDefaultsAreValid(t *testing.T) {
	daily := Daily()
	require.NoError(t, daily.Validate())
	assert.Equal(t, market.Daily, daily.Granularity)
	assert.Equal(t, 5000, daily.InitialCandles)
	assert.Equal(t, 2*time.Hour, daily.ServerOffset())

	minutes := Minutes()
	require.NoError(t, minutes.Validate())
	assert.Equal(t, market.Minute, minutes.Granularity)
	assert.Equal(t, 90000, minutes.InitialCandles)
	assert.NotEqual(t, daily.DBPath, minutes.DBPath)
	assert.NotEqual(t, daily.Table, minutes.Table)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
symbol: BTCUSD
granularity: minute
db_path: ./test.db
table: BTCUSDminutes
initial_candles: 1000
server_offset_hours: 3
recreate_table: false
bridge_url: http://localhost:7777
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSD", cfg.Symbol)
	assert.Equal(t, market.Minute, cfg.Granularity)
	assert.Equal(t, 1000, cfg.InitialCandles)
	assert.Equal(t, 3*time.Hour, cfg.ServerOffset())
	assert.False(t, cfg.RecreateTable)
	assert.Equal(t, "http://localhost:7777", cfg.BridgeURL)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"symbol": "BTCUSD",
		"granularity": "daily",
		"db_path": "./daily.db",
		"table": "BTCUSDdaily",
		"initial_candles": 5000,
		"server_offset_hours": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, market.Daily, cfg.Granularity)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing symbol", func(c *Config) { c.Symbol = "" }},
		{"bad granularity", func(c *Config) { c.Granularity = "hourly" }},
		{"missing db path", func(c *Config) { c.DBPath = "" }},
		{"missing table", func(c *Config) { c.Table = "" }},
		{"table with quote", func(c *Config) { c.Table = `candles"; DROP` }},
		{"table starts with digit", func(c *Config) { c.Table = "1candles" }},
		{"zero initial candles", func(c *Config) { c.InitialCandles = 0 }},
		{"offset out of range", func(c *Config) { c.ServerOffsetHours = 24 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Daily()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
