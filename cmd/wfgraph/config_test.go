package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/internal/layout"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfigFrom(filepath.Join(t.TempDir(), "missing.json"), env(nil))
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, "horizontal", cfg.Direction)
	assert.Equal(t, "expr", cfg.GateEngine)
}

func TestLoadConfig_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"direction":"vertical","max_scale":4,"log_level":"debug"}`), 0o644))

	cfg := loadConfigFrom(path, env(nil))
	assert.Equal(t, "vertical", cfg.Direction)
	assert.Equal(t, 4.0, cfg.MaxScale)
	assert.Equal(t, 0.2, cfg.MinScale, "unset keys keep defaults")

	cfg = loadConfigFrom(path, env(map[string]string{
		"WFGRAPH_DIRECTION":   "horizontal",
		"WFGRAPH_MAX_SCALE":   "8",
		"WFGRAPH_MIN_SCALE":   "not-a-number",
		"WFGRAPH_GATE_ENGINE": "cel",
		"WFGRAPH_OUT_DIR":     "/tmp/out",
	}))
	assert.Equal(t, "horizontal", cfg.Direction)
	assert.Equal(t, 8.0, cfg.MaxScale)
	assert.Equal(t, 0.2, cfg.MinScale)
	assert.Equal(t, "cel", cfg.GateEngine)
	assert.Equal(t, "/tmp/out", cfg.OutDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLayoutConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Direction = "vertical"
	lc, err := cfg.layoutConfig()
	require.NoError(t, err)
	assert.Equal(t, layout.Vertical, lc.Direction)

	cfg.Direction = "diagonal"
	_, err = cfg.layoutConfig()
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.MinScale = 2
	lc, err = cfg.layoutConfig()
	require.NoError(t, err)
	assert.Equal(t, 2.0, lc.MaxOriginScale)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestRunInstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wfgraph")
	var out bytes.Buffer

	require.NoError(t, runInstall([]string{"-direction", "vertical", "-gate-engine", "cel"}, dir, &out))
	assert.Contains(t, out.String(), "settings.json")

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, "vertical", cfg.Direction)
	assert.Equal(t, "cel", cfg.GateEngine)
	assert.Equal(t, 15.0, cfg.MaxScale)

	assert.Error(t, runInstall([]string{"-direction", "sideways"}, dir, &out))
}
