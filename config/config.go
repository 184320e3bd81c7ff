package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Fasterbrick/FetchOHLCMT5/market"
)

// Config holds everything one collector instance needs. The daily and
// minute instances share the architecture and differ only in these values.
type Config struct {
	Symbol      string             `json:"symbol" yaml:"symbol"`
	Granularity market.Granularity `json:"granularity" yaml:"granularity"`

	DBPath string `json:"db_path" yaml:"db_path"`
	Table  string `json:"table" yaml:"table"`

	// InitialCandles is the number of completed candles backfilled at
	// startup. One extra is requested to cover the in-progress period.
	InitialCandles int `json:"initial_candles" yaml:"initial_candles"`

	// ServerOffsetHours is subtracted from provider timestamps to align
	// server time with local display time. It depends on the terminal's
	// configured timezone and is not derived from a timezone database.
	ServerOffsetHours int `json:"server_offset_hours" yaml:"server_offset_hours"`

	// RecreateTable drops and recreates the candle table on startup.
	RecreateTable bool `json:"recreate_table" yaml:"recreate_table"`

	// BridgeURL overrides the default local terminal bridge address.
	BridgeURL string `json:"bridge_url,omitempty" yaml:"bridge_url,omitempty"`
}

// ServerOffset returns the configured offset as a duration.
func (c Config) ServerOffset() time.Duration {
	return time.Duration(c.ServerOffsetHours) * time.Hour
}

// Daily returns the compiled-in configuration for the daily instance.
func Daily() Config {
	return Config{
		Symbol:            "BTCUSD",
		Granularity:       market.Daily,
		DBPath:            "BTCUSDdaily.db",
		Table:             "BTCUSDdaily",
		InitialCandles:    5000,
		ServerOffsetHours: 2,
		RecreateTable:     true,
	}
}

// Minutes returns the compiled-in configuration for the one-minute instance.
func Minutes() Config {
	return Config{
		Symbol:            "BTCUSD",
		Granularity:       market.Minute,
		DBPath:            "BTCUSDminutes.db",
		Table:             "BTCUSDminutes",
		InitialCandles:    90000,
		ServerOffsetHours: 2,
		RecreateTable:     true,
	}
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Granularity != market.Daily && c.Granularity != market.Minute {
		return fmt.Errorf("granularity must be %q or %q", market.Daily, market.Minute)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Table == "" {
		return fmt.Errorf("table is required")
	}
	if !validTableName(c.Table) {
		return fmt.Errorf("table %q must contain only letters, digits and underscores", c.Table)
	}
	if c.InitialCandles <= 0 {
		return fmt.Errorf("initial_candles must be positive")
	}
	if c.ServerOffsetHours < -23 || c.ServerOffsetHours > 23 {
		return fmt.Errorf("server_offset_hours must be between -23 and 23")
	}
	return nil
}

// Table names are interpolated into SQL, so keep them to identifier
// characters.
func validTableName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return !strings.ContainsAny(name[:1], "0123456789")
}
