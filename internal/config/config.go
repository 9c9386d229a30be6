// Package config loads the rbx tool configuration.
//
// Config files are JWCC (JSON with comments and trailing commas). The
// precedence is defaults, then the global config, then the project
// config, then flags handled by the caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the project config file name, looked up in the working
// directory.
const FileName = ".rbx.json"

// Config holds all rbx options.
type Config struct {
	// From config files (serialized)
	LogLevel       string `json:"log_level,omitempty"`
	DisasmLiterals bool   `json:"disasm_literals,omitempty"`
	HistoryFile    string `json:"history_file,omitempty"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string
	Project string
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:       "warn",
		DisasmLiterals: true,
	}
}

// globalPath returns the global config location: $XDG_CONFIG_HOME/rbx/
// config.json, falling back to ~/.config/rbx/config.json. Empty when no
// home directory can be determined.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "rbx", "config.json")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "rbx", "config.json")
	}
	return ""
}

// Load resolves the effective configuration.
//
// explicitPath, when non-empty, replaces the whole search: only that
// file is read and it must exist.
func Load(explicitPath string, env map[string]string) (Config, error) {
	cfg := Default()

	if explicitPath != "" {
		if err := mergeFile(&cfg, explicitPath); err != nil {
			return Config{}, err
		}
		cfg.Sources.Project = explicitPath
		return cfg, validate(cfg)
	}

	if gp := globalPath(env); gp != "" {
		if err := mergeFile(&cfg, gp); err == nil {
			cfg.Sources.Global = gp
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	if err := mergeFile(&cfg, FileName); err == nil {
		cfg.Sources.Project = FileName
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	return cfg, validate(cfg)
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := json.Unmarshal(standardized, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func validate(cfg Config) error {
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	return nil
}

// Logger builds the tool logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true

	return zc.Build()
}
