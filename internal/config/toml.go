// Package config provides configuration helpers, TOML parsing, and the
// live-mutable settings consumed by the meter.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Meter MeterConfig `toml:"meter"`
}

// MeterConfig maps meter-related settings. Pointer fields distinguish
// "unset" from explicit zero values.
type MeterConfig struct {
	DPI        *float64 `toml:"dpi"`
	WindowMs   *int64   `toml:"window-ms"`
	StaleMs    *int64   `toml:"stale-ms"`
	PlotSpanMs *int64   `toml:"plot-span-ms"`
	Device     *string  `toml:"device"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
