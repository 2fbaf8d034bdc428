/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user config dir.
// Environment variables are read-only overrides applied after the file is merged.
// Bump ConfigVersion when the structure changes incompatibly.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Storage       StorageConfig `yaml:"storage"`
	Undo          UndoConfig    `yaml:"undo"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	CrashDir       string `yaml:"crash_dir"` // empty: OS temp dir
}

// StorageConfig selects the key-value backend behind the forms library.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // "sqlite" | "file" | "memory"
	Path          string `yaml:"path"`   // sqlite file or directory for the file driver
	KeepRevisions int    `yaml:"keep_revisions"`
}

type UndoConfig struct {
	MaxBytes      int `yaml:"max_bytes"`
	MaxDepth      int `yaml:"max_depth"`
	MinIntervalMs int `yaml:"min_interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Env var names used as overrides.
const (
	EnvConfigPath     = "FF_CONFIG"
	EnvStorageDriver  = "FF_STORAGE_DRIVER"
	EnvStoragePath    = "FF_STORAGE_PATH"
	EnvKeepRevisions  = "FF_KEEP_REVISIONS"
	EnvUndoDepth      = "FF_UNDO_DEPTH"
	EnvTelemetryOptIn = "FF_TELEMETRY_OPT_IN"
	EnvCrashDir       = "FF_CRASH_DIR"
	EnvLogLevel       = "FF_LOG_LEVEL"
	EnvLogFormat      = "FF_LOG_FORMAT"
	EnvLogSource      = "FF_LOG_SOURCE"
	EnvLogFile        = "FF_LOG_FILE"
)

// Defaults returns the application defaults. The storage path is left empty;
// see StorageConfig.Location.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Storage:       StorageConfig{Driver: DriverSQLite, KeepRevisions: 10},
		Undo:          UndoConfig{MaxBytes: 16 * 1024 * 1024, MaxDepth: 100, MinIntervalMs: 250},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Location returns Path, or the per-driver default inside the user config
// dir when Path is empty: forms.sqlite for sqlite, a forms/ directory for file.
func (s StorageConfig) Location() string {
	if p := strings.TrimSpace(s.Path); p != "" {
		return p
	}
	name := "forms.sqlite"
	if s.Driver == DriverFile {
		name = "forms"
	}
	if dir, err := appDir(); err == nil {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), "formforge", name)
}

func appDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "formforge"), nil
}

// ConfigPath returns the config file location; FF_CONFIG wins over the per-user default.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := appDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file (a missing file is not an error), merges it over the
// defaults and applies environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file path.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if uerr := yaml.Unmarshal(data, &fileCfg); uerr != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, uerr)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path, creating parent directories.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if s := strings.TrimSpace(src.General.CrashDir); s != "" {
		dst.General.CrashDir = s
	}

	if s := strings.ToLower(strings.TrimSpace(src.Storage.Driver)); s != "" {
		dst.Storage.Driver = s
	}
	if s := strings.TrimSpace(src.Storage.Path); s != "" {
		dst.Storage.Path = s
	}
	if src.Storage.KeepRevisions > 0 {
		dst.Storage.KeepRevisions = src.Storage.KeepRevisions
	}

	if src.Undo.MaxBytes > 0 {
		dst.Undo.MaxBytes = src.Undo.MaxBytes
	}
	if src.Undo.MaxDepth > 0 {
		dst.Undo.MaxDepth = src.Undo.MaxDepth
	}
	if src.Undo.MinIntervalMs > 0 {
		dst.Undo.MinIntervalMs = src.Undo.MinIntervalMs
	}

	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := env(EnvStorageDriver); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := env(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
	}
	if v := env(EnvKeepRevisions); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Storage.KeepRevisions = n
		}
	}
	if v := env(EnvUndoDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Undo.MaxDepth = n
		}
	}
	if v := env(EnvTelemetryOptIn); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := env(EnvCrashDir); v != "" {
		cfg.General.CrashDir = v
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

var overridable = map[string]string{
	"storage.driver":           EnvStorageDriver,
	"storage.path":             EnvStoragePath,
	"storage.keep_revisions":   EnvKeepRevisions,
	"undo.max_depth":           EnvUndoDepth,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"general.crash_dir":        EnvCrashDir,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor reports the env var currently overriding the given dotted key.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := overridable[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// MinInterval is the undo coalescing window as a duration.
func (u UndoConfig) MinInterval() time.Duration {
	return time.Duration(u.MinIntervalMs) * time.Millisecond
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
