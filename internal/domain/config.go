// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Version       string
	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	MetricsEnabled bool `toml:"metricsEnabled" mapstructure:"metricsEnabled"`

	// DryRun logs every destructive action without executing it. Defaults to
	// true so a fresh install never deletes anything before the operator has
	// reviewed the selection behavior.
	DryRun bool `toml:"dryRun" mapstructure:"dryRun"`

	// DebounceSeconds is the quiet period after the last series webhook before
	// the accumulated batch is processed.
	DebounceSeconds int `toml:"debounceSeconds" mapstructure:"debounceSeconds"`

	// MinSeedSeconds is the minimum seeding duration a torrent must have
	// reached before it may be deleted.
	MinSeedSeconds int64 `toml:"minSeedSeconds" mapstructure:"minSeedSeconds"`

	// HistoryLimit caps how many catalog history records are considered per
	// item; more than this is treated as ambiguous and the lookup is aborted.
	HistoryLimit int `toml:"historyLimit" mapstructure:"historyLimit"`

	// ProtectedTag marks library items that must never be evicted.
	ProtectedTag string `toml:"protectedTag" mapstructure:"protectedTag"`

	MovieCategories []string `toml:"movieCategories" mapstructure:"movieCategories"`
	TVCategories    []string `toml:"tvCategories" mapstructure:"tvCategories"`

	Sonarr *CatalogConfig `toml:"sonarr" mapstructure:"sonarr"`
	Radarr *CatalogConfig `toml:"radarr" mapstructure:"radarr"`

	Qbittorrent []TorrentClientConfig `toml:"qbittorrent" mapstructure:"qbittorrent"`

	// NotificationURLs are shoutrrr URLs (telegram://..., discord://..., etc.)
	// that receive pass summaries and action reports.
	NotificationURLs []string `toml:"notificationUrls" mapstructure:"notificationUrls"`
}

// CatalogConfig holds the connection settings for one Sonarr or Radarr
// instance plus the storage volume it manages.
type CatalogConfig struct {
	Name   string `toml:"name" mapstructure:"name"`
	URL    string `toml:"url" mapstructure:"url"`
	APIKey string `toml:"apiKey" mapstructure:"apiKey"`

	// DiskPath must match one of the paths the catalog reports from its
	// diskspace endpoint.
	DiskPath string `toml:"diskPath" mapstructure:"diskPath"`

	// FreeSpaceThresholdGB is the free-space floor in GiB; a pass only evicts
	// when free space drops below it.
	FreeSpaceThresholdGB int `toml:"freeSpaceThresholdGb" mapstructure:"freeSpaceThresholdGb"`

	TimeoutSeconds int `toml:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// TorrentClientConfig holds the connection settings for one qBittorrent
// instance.
type TorrentClientConfig struct {
	Name     string `toml:"name" mapstructure:"name"`
	Host     string `toml:"host" mapstructure:"host"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
}

// ThresholdBytes returns the free-space floor in bytes.
func (c *CatalogConfig) ThresholdBytes() int64 {
	return int64(c.FreeSpaceThresholdGB) * 1024 * 1024 * 1024
}

// Timeout returns the per-request HTTP timeout for this catalog.
func (c *CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DebounceWindow returns the configured debounce window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceSeconds) * time.Second
}

// MinSeedTime returns the configured minimum seeding duration.
func (c *Config) MinSeedTime() time.Duration {
	return time.Duration(c.MinSeedSeconds) * time.Second
}

func (c *CatalogConfig) validate(label string) error {
	if c.Name == "" {
		c.Name = label
	}
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("%s: url is required", label)
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("%s: invalid url %q: %w", label, c.URL, err)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%s: apiKey is required", label)
	}
	if strings.TrimSpace(c.DiskPath) == "" {
		return fmt.Errorf("%s: diskPath is required", label)
	}
	if c.FreeSpaceThresholdGB <= 0 {
		return fmt.Errorf("%s: freeSpaceThresholdGb must be positive", label)
	}
	return nil
}

// Validate checks that the configuration is complete enough to serve.
// Errors here are fatal at startup.
func (c *Config) Validate() error {
	if c.Sonarr == nil && c.Radarr == nil {
		return errors.New("at least one of sonarr or radarr must be configured")
	}
	if c.Sonarr != nil {
		if err := c.Sonarr.validate("sonarr"); err != nil {
			return err
		}
	}
	if c.Radarr != nil {
		if err := c.Radarr.validate("radarr"); err != nil {
			return err
		}
	}
	if len(c.Qbittorrent) == 0 {
		return errors.New("at least one qbittorrent instance must be configured")
	}
	for i := range c.Qbittorrent {
		qc := &c.Qbittorrent[i]
		if strings.TrimSpace(qc.Host) == "" {
			return fmt.Errorf("qbittorrent[%d]: host is required", i)
		}
		if qc.Name == "" {
			qc.Name = fmt.Sprintf("qbittorrent-%d", i+1)
		}
	}
	if c.DebounceSeconds <= 0 {
		return errors.New("debounceSeconds must be positive")
	}
	if c.MinSeedSeconds < 0 {
		return errors.New("minSeedSeconds cannot be negative")
	}
	if c.HistoryLimit <= 0 {
		return errors.New("historyLimit must be positive")
	}
	if strings.TrimSpace(c.ProtectedTag) == "" {
		return errors.New("protectedTag is required")
	}
	return nil
}
