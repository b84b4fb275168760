package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// runInstall writes settings.json under dir from the given flags.
func runInstall(args []string, dir string, out io.Writer) error {
	def := defaultConfig()
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	direction := fs.String("direction", def.Direction, "rank direction: horizontal, vertical")
	minScale := fs.Float64("min-scale", def.MinScale, "minimum zoom scale")
	maxScale := fs.Float64("max-scale", def.MaxScale, "maximum zoom scale")
	logLevel := fs.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
	outDir := fs.String("out-dir", def.OutDir, "directory rendered files are written to")
	gateEngine := fs.String("gate-engine", def.GateEngine, "gate condition dialect: expr, cel, jq")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := Config{
		Direction:  *direction,
		MinScale:   *minScale,
		MaxScale:   *maxScale,
		LogLevel:   *logLevel,
		OutDir:     *outDir,
		GateEngine: *gateEngine,
	}
	if _, err := cfg.layoutConfig(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Config written to %s\n", path)
	return nil
}
