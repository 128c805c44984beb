/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config is the user-editable YAML configuration plus read-only
// environment overrides. The gallery token never touches the YAML file; it
// lives in the OS keychain.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type GalleryConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
	ExportDir      string `yaml:"export_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is persisted as YAML in the per-user config dir.
// config_version: bump on backward-incompatible structure changes.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Gallery       GalleryConfig `yaml:"gallery"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", ExportDir: ""},
		Gallery:       GalleryConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir        = "CBD_CONFIG_DIR"
	EnvGalleryURL       = "CBD_GALLERY_URL"
	EnvGalleryTimeoutMs = "CBD_GALLERY_TIMEOUT_MS"
	EnvTelemetryOptIn   = "CBD_TELEMETRY_OPT_IN"
	EnvExportDir        = "CBD_EXPORT_DIR"
	EnvLogLevel         = "CBD_LOG_LEVEL"
	EnvLogFormat        = "CBD_LOG_FORMAT"
	EnvLogSource        = "CBD_LOG_SOURCE"
	EnvLogFile          = "CBD_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "ComicBoard"
	keyringToken   = "gallery_token"
)

// TokenStore abstracts the keyring so tests can substitute memory.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SetTokenStore swaps the keyring backend and returns the previous one.
func SetTokenStore(s TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = s
	return prev
}

// ConfigPath returns the per-user config file path. CBD_CONFIG_DIR overrides
// the platform default.
func ConfigPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Join(dir, "config.yaml"), nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ComicBoard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ComicBoard")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "comicboard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file if present, applies defaults and env overrides,
// and fetches the gallery token from the keyring (returned separately so the
// secret never rides along in the struct).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the YAML file and persists a non-empty token to the keyring.
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return fmt.Errorf("store gallery token: %w", err)
		}
	}
	return nil
}

// ClearToken removes the gallery token from the keyring.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans persist as written in the file
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if strings.TrimSpace(src.General.ExportDir) != "" {
		dst.General.ExportDir = strings.TrimSpace(src.General.ExportDir)
	}
	if src.Gallery.BaseURL != "" {
		dst.Gallery.BaseURL = src.Gallery.BaseURL
	}
	if src.Gallery.TimeoutMs != 0 {
		dst.Gallery.TimeoutMs = src.Gallery.TimeoutMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGalleryURL)); v != "" {
		cfg.Gallery.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGalleryTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gallery.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.General.ExportDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
