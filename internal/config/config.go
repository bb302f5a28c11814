// Package config loads memlayout settings from a TOML file.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config controls parsing, analysis and output.
type Config struct {
	LogLevel       string
	AllStructs     bool
	SuggestReorder bool
	Color          bool
	Output         string
	Package        string
}

type fileConfig struct {
	LogLevel       string `toml:"log_level"`
	AllStructs     bool   `toml:"all_structs"`
	SuggestReorder bool   `toml:"suggest_reorder"`
	Color          bool   `toml:"color"`
	Output         string `toml:"output"`
	Package        string `toml:"package"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Color:    true,
		Output:   OutputTable,
	}
}

// Load reads path and applies the keys it defines on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("all_structs") {
		cfg.AllStructs = raw.AllStructs
	}
	if meta.IsDefined("suggest_reorder") {
		cfg.SuggestReorder = raw.SuggestReorder
	}
	if meta.IsDefined("color") {
		cfg.Color = raw.Color
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.ToLower(strings.TrimSpace(raw.Output))
	}
	if meta.IsDefined("package") {
		cfg.Package = strings.TrimSpace(raw.Package)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg for unusable values.
func Validate(cfg Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	switch cfg.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("config: output must be %q or %q, got %q", OutputTable, OutputJSON, cfg.Output)
	}
	if cfg.Package != "" && !isIdent(cfg.Package) {
		return fmt.Errorf("config: package %q is not a Go identifier", cfg.Package)
	}
	return nil
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
