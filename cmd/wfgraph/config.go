package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rendis/wfgraph/internal/layout"
	"github.com/rendis/wfgraph/internal/logging"
)

// Config holds the wfgraph CLI configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	Direction  string  `json:"direction"`
	MinScale   float64 `json:"min_scale"`
	MaxScale   float64 `json:"max_scale"`
	LogLevel   string  `json:"log_level"`
	OutDir     string  `json:"out_dir"`
	GateEngine string  `json:"gate_engine"`
}

func defaultConfig() Config {
	d := layout.DefaultConfig()
	return Config{
		Direction:  string(d.Direction),
		MinScale:   d.MinScale,
		MaxScale:   d.MaxScale,
		LogLevel:   "info",
		OutDir:     ".",
		GateEngine: "expr",
	}
}

func wfgraphDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wfgraph"
	}
	return filepath.Join(home, ".wfgraph")
}

func settingsPath() string {
	return filepath.Join(wfgraphDir(), "settings.json")
}

func loadConfig() Config {
	return loadConfigFrom(settingsPath(), os.Getenv)
}

// loadConfigFrom layers the settings file at path and the variables
// returned by getenv over the defaults.
func loadConfigFrom(path string, getenv func(string) string) Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := getenv("WFGRAPH_DIRECTION"); v != "" {
		cfg.Direction = v
	}
	if v := getenv("WFGRAPH_MIN_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinScale = f
		}
	}
	if v := getenv("WFGRAPH_MAX_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MaxScale = f
		}
	}
	if v := getenv("WFGRAPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("WFGRAPH_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := getenv("WFGRAPH_GATE_ENGINE"); v != "" {
		cfg.GateEngine = v
	}
	return cfg
}

// layoutConfig applies the CLI settings to the layout defaults.
func (c Config) layoutConfig() (layout.Config, error) {
	lc := layout.DefaultConfig()
	lc.Direction = layout.Direction(c.Direction)
	lc.MinScale = c.MinScale
	lc.MaxScale = c.MaxScale
	if lc.MaxOriginScale < lc.MinScale {
		lc.MaxOriginScale = lc.MinScale
	}
	if err := lc.Validate(); err != nil {
		return layout.Config{}, fmt.Errorf("config: %w", err)
	}
	return lc, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(logging.NewCorrelationHandler(inner))
}
