package main

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"

	"github.com/pixelveil/veil"
)

// Config is the optional TOML configuration for the demo command.
type Config struct {
	BrushSize int    `toml:"brush_size"`
	Strength  int    `toml:"strength"`
	Strategy  string `toml:"strategy"`
	LogLevel  string `toml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		BrushSize: veil.DefaultBrushSize,
		Strength:  veil.DefaultStrength,
		LogLevel:  "warn",
	}
}

// loadConfig reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// level maps the configured log level name onto slog.
func (c Config) level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
