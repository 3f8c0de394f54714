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
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"svgdraw/internal/decimal"
	applog "svgdraw/internal/log"
)

// AppConfig is the YAML configuration file. Environment variables override
// file values at load time and are never written back.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Decimal       DecimalConfig `yaml:"decimal"`
	Text          TextConfig    `yaml:"text"`
	Cache         CacheConfig   `yaml:"cache"`
	Server        ServerConfig  `yaml:"server"`
	Logging       LoggingConfig `yaml:"logging"`
}

// CanvasConfig is the canvas used when neither the scene nor the caller
// gives one.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type DecimalConfig struct {
	Precision  int32 `yaml:"precision"`
	FuzzyScale int32 `yaml:"fuzzy_scale"`
}

// Context returns the decimal context described by the section.
func (d DecimalConfig) Context() decimal.Context {
	return decimal.Context{Precision: d.Precision, FuzzyScale: d.FuzzyScale}.Normalize()
}

type TextConfig struct {
	FontFile   string  `yaml:"font_file"` // empty: built-in 7x13 face
	FontFamily string  `yaml:"font_family"`
	DPI        float64 `yaml:"dpi"`
}

type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"` // empty: <user cache dir>/svgdraw/render.db
	MaxBytes int64  `yaml:"max_bytes"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	BodyLimitBytes int    `yaml:"body_limit_bytes"`
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Options converts the section for log.Init.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{Width: 800, Height: 600},
		Decimal:       DecimalConfig{Precision: decimal.DefaultContext.Precision, FuzzyScale: decimal.DefaultContext.FuzzyScale},
		Text:          TextConfig{DPI: 72},
		Cache:         CacheConfig{Enabled: false, MaxBytes: 64 << 20},
		Server:        ServerConfig{Addr: ":8080", ReadTimeoutMs: 10000, WriteTimeoutMs: 10000, BodyLimitBytes: 1 << 20},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "SVD_CONFIG"
	EnvCanvasWidth    = "SVD_CANVAS_WIDTH"
	EnvCanvasHeight   = "SVD_CANVAS_HEIGHT"
	EnvPrecision      = "SVD_DECIMAL_PRECISION"
	EnvFuzzyScale     = "SVD_DECIMAL_FUZZY_SCALE"
	EnvFontFile       = "SVD_FONT_FILE"
	EnvCacheEnabled   = "SVD_CACHE_ENABLED"
	EnvCachePath      = "SVD_CACHE_PATH"
	EnvCacheMaxBytes  = "SVD_CACHE_MAX_BYTES"
	EnvServerAddr     = "SVD_SERVER_ADDR"
	EnvLogLevel       = applog.EnvLevel
	EnvLogFormat      = applog.EnvFormat
	EnvLogSource      = applog.EnvSource
	EnvLogFile        = applog.EnvFile
	configDirName     = "svgdraw"
	defaultConfigFile = "config.yaml"
)

// ConfigPath returns the config file path: $SVD_CONFIG if set, otherwise the
// per-user location for the OS.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(os.Getenv("HOME"), ".config")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, configDirName, defaultConfigFile), nil
}

// DefaultCachePath is used when cache.path is empty.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, configDirName, "render.db")
}

// Load reads the config file at ConfigPath, if any.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults and applies environment overrides. A
// missing file is not an error; a malformed one is.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Decimal.Precision > 0 {
		dst.Decimal.Precision = src.Decimal.Precision
	}
	if src.Decimal.FuzzyScale > 0 {
		dst.Decimal.FuzzyScale = src.Decimal.FuzzyScale
	}
	if v := strings.TrimSpace(src.Text.FontFile); v != "" {
		dst.Text.FontFile = v
	}
	if v := strings.TrimSpace(src.Text.FontFamily); v != "" {
		dst.Text.FontFamily = v
	}
	if src.Text.DPI > 0 {
		dst.Text.DPI = src.Text.DPI
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Cache.Enabled = src.Cache.Enabled
	if v := strings.TrimSpace(src.Cache.Path); v != "" {
		dst.Cache.Path = v
	}
	if src.Cache.MaxBytes > 0 {
		dst.Cache.MaxBytes = src.Cache.MaxBytes
	}
	if v := strings.TrimSpace(src.Server.Addr); v != "" {
		dst.Server.Addr = v
	}
	if src.Server.ReadTimeoutMs > 0 {
		dst.Server.ReadTimeoutMs = src.Server.ReadTimeoutMs
	}
	if src.Server.WriteTimeoutMs > 0 {
		dst.Server.WriteTimeoutMs = src.Server.WriteTimeoutMs
	}
	if src.Server.BodyLimitBytes > 0 {
		dst.Server.BodyLimitBytes = src.Server.BodyLimitBytes
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envInt32(key string, dst *int32) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n > 0 {
			*dst = int32(n)
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvCanvasWidth, &cfg.Canvas.Width)
	envInt(EnvCanvasHeight, &cfg.Canvas.Height)
	envInt32(EnvPrecision, &cfg.Decimal.Precision)
	envInt32(EnvFuzzyScale, &cfg.Decimal.FuzzyScale)
	envString(EnvFontFile, &cfg.Text.FontFile)
	if v := strings.TrimSpace(os.Getenv(EnvCacheEnabled)); v != "" {
		cfg.Cache.Enabled = envBool(v)
	}
	envString(EnvCachePath, &cfg.Cache.Path)
	if v := strings.TrimSpace(os.Getenv(EnvCacheMaxBytes)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Cache.MaxBytes = n
		}
	}
	envString(EnvServerAddr, &cfg.Server.Addr)
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	envString(EnvLogFile, &cfg.Logging.File)
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := map[string]string{
		"canvas.width":        EnvCanvasWidth,
		"canvas.height":       EnvCanvasHeight,
		"decimal.precision":   EnvPrecision,
		"decimal.fuzzy_scale": EnvFuzzyScale,
		"text.font_file":      EnvFontFile,
		"cache.enabled":       EnvCacheEnabled,
		"cache.path":          EnvCachePath,
		"cache.max_bytes":     EnvCacheMaxBytes,
		"server.addr":         EnvServerAddr,
		"logging.level":       EnvLogLevel,
		"logging.format":      EnvLogFormat,
		"logging.source":      EnvLogSource,
		"logging.file":        EnvLogFile,
	}[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
