// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads and watches the TOML configuration file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/reclaimarr/internal/domain"
)

const envPrefix = "RECLAIMARR__"

// DefaultMovieCategories are the qBittorrent categories searched for movie
// artifacts when no explicit list is configured.
var DefaultMovieCategories = []string{
	"manual_import_movies",
	"movies",
	"manual_import_prowlarr",
	"movies.cross-seed",
	"manual_import_movies.cross-seed",
}

// DefaultTVCategories are the qBittorrent categories searched for episode
// artifacts when no explicit list is configured.
var DefaultTVCategories = []string{
	"manual_import_tv",
	"tv",
	"manual_import_prowlarr",
	"tv.cross-seed",
	"manual_import_tv.cross-seed",
}

// AppConfig wraps the parsed configuration together with the viper instance
// that produced it, so the file can be watched for live log-level changes.
type AppConfig struct {
	Config *domain.Config

	viper *viper.Viper
	mu    sync.Mutex
}

// New loads the configuration from configPath (a file or a directory
// containing config.toml). Missing or invalid required settings are fatal.
func New(configPath, version string) (*AppConfig, error) {
	c := &AppConfig{
		viper: viper.New(),
	}
	c.defaults(version)

	if err := c.load(configPath); err != nil {
		return nil, err
	}
	if err := c.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return c, nil
}

func (c *AppConfig) defaults(version string) {
	c.Config = &domain.Config{
		Version:         version,
		Host:            "0.0.0.0",
		Port:            4343,
		LogLevel:        "INFO",
		LogMaxSize:      50,
		LogMaxBackups:   3,
		DryRun:          true,
		DebounceSeconds: 20,
		MinSeedSeconds:  30 * 24 * 3600,
		HistoryLimit:    20,
		ProtectedTag:    "no_delete",
		MovieCategories: DefaultMovieCategories,
		TVCategories:    DefaultTVCategories,
	}
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			configPath = filepath.Join(configPath, "config.toml")
		}
		c.viper.SetConfigFile(configPath)
	} else {
		c.viper.SetConfigName("config")
		c.viper.AddConfigPath(".")
		c.viper.AddConfigPath("$HOME/.config/reclaimarr")
	}

	if err := c.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "could not read config")
		}
		log.Debug().Msg("no config file found, relying on defaults and environment")
	}

	c.loadFromEnv()

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return errors.Wrap(err, "could not unmarshal config")
	}

	return nil
}

// loadFromEnv maps RECLAIMARR__ environment variables onto config keys, e.g.
// RECLAIMARR__DRY_RUN=false or RECLAIMARR__SONARR_API_KEY=....
func (c *AppConfig) loadFromEnv() {
	for _, pair := range os.Environ() {
		if !strings.HasPrefix(pair, envPrefix) {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(pair, envPrefix), "=")
		if !ok || value == "" {
			continue
		}
		// SONARR_API_KEY -> sonarr.apikey, DRY_RUN -> dryrun
		parts := strings.SplitN(strings.ToLower(key), "_", 2)
		switch parts[0] {
		case "sonarr", "radarr":
			if len(parts) == 2 {
				c.viper.Set(parts[0]+"."+strings.ReplaceAll(parts[1], "_", ""), value)
			}
		default:
			c.viper.Set(strings.ReplaceAll(strings.ToLower(key), "_", ""), value)
		}
	}
}

// DynamicReload re-reads mutable settings (log level, dry-run) when the
// config file changes on disk.
func (c *AppConfig) DynamicReload(onChange func(*domain.Config)) {
	c.viper.OnConfigChange(func(_ fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()

		logLevel := c.viper.GetString("logLevel")
		if logLevel != "" {
			c.Config.LogLevel = logLevel
		}
		c.Config.DryRun = c.viper.GetBool("dryRun")

		log.Info().
			Str("logLevel", c.Config.LogLevel).
			Bool("dryRun", c.Config.DryRun).
			Msg("config file changed, reloaded dynamic settings")

		if onChange != nil {
			onChange(c.Config)
		}
	})
	c.viper.WatchConfig()
}
