// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the optional CLI configuration, read from
// $XDG_CONFIG_HOME/speck/config.toml. Flags and SPECK_LOG_LEVEL win over the
// file.
type Config struct {
	LogLevel  string `toml:"log_level"`
	SchemaDir string `toml:"schema_dir"`
}

func defaultConfig() Config {
	return Config{LogLevel: "warn"}
}

func loadConfig() (Config, error) {
	cfg := defaultConfig()
	dir, err := os.UserConfigDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(dir, "speck", "config.toml")
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// resolveSchemaPath tries the path as given, then under the configured
// schema directory.
func (c Config) resolveSchemaPath(path string) string {
	if _, err := os.Stat(path); err == nil || c.SchemaDir == "" || filepath.IsAbs(path) {
		return path
	}
	candidate := filepath.Join(c.SchemaDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}
