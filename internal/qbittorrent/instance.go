// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package qbittorrent adapts qBittorrent instances as torrent stores.
package qbittorrent

import (
	"context"
	"fmt"
	"strings"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/reclaimarr/internal/domain"
)

// Instance wraps one qBittorrent connection. Instances are independent: a
// failure on one never affects another.
type Instance struct {
	name   string
	client *qbt.Client
}

// NewInstance constructs an instance from config without connecting.
func NewInstance(cfg domain.TorrentClientConfig) *Instance {
	return &Instance{
		name: cfg.Name,
		client: qbt.NewClient(qbt.Config{
			Host:     cfg.Host,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  60,
		}),
	}
}

// Name returns the configured instance name.
func (i *Instance) Name() string { return i.name }

// Login authenticates the underlying session.
func (i *Instance) Login(ctx context.Context) error {
	if err := i.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("qbittorrent %s: login failed: %w", i.name, err)
	}
	return nil
}

// ListByCategory returns all torrents in the given category.
func (i *Instance) ListByCategory(ctx context.Context, category string) ([]qbt.Torrent, error) {
	torrents, err := i.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Category: category})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent %s: list category %q: %w", i.name, category, err)
	}
	return torrents, nil
}

// Files returns the content file names of a torrent.
func (i *Instance) Files(ctx context.Context, hash string) ([]string, error) {
	files, err := i.client.GetFilesInformationCtx(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("qbittorrent %s: files for %s: %w", i.name, hash, err)
	}
	if files == nil {
		return nil, nil
	}
	names := make([]string, 0, len(*files))
	for _, f := range *files {
		names = append(names, f.Name)
	}
	return names, nil
}

// Info looks up torrents by hash and returns them keyed by lowercased hash.
// Hashes unknown to this instance are simply absent from the result.
func (i *Instance) Info(ctx context.Context, hashes []string) (map[string]qbt.Torrent, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	torrents, err := i.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Hashes: hashes})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent %s: info lookup: %w", i.name, err)
	}
	found := make(map[string]qbt.Torrent, len(torrents))
	for _, t := range torrents {
		found[strings.ToLower(t.Hash)] = t
	}
	return found, nil
}

// Delete removes torrents and optionally their data.
func (i *Instance) Delete(ctx context.Context, hashes []string, deleteFiles bool) error {
	if len(hashes) == 0 {
		return nil
	}
	if err := i.client.DeleteTorrentsCtx(ctx, hashes, deleteFiles); err != nil {
		return fmt.Errorf("qbittorrent %s: delete: %w", i.name, err)
	}
	return nil
}

// SeedTime returns how long the torrent has been seeding. When the live
// counter is zero (paused torrents on some versions report that) it falls
// back to the time elapsed since completion.
func SeedTime(t qbt.Torrent, now time.Time) time.Duration {
	if t.SeedingTime > 0 {
		return time.Duration(t.SeedingTime) * time.Second
	}
	if t.CompletionOn > 0 {
		return now.Sub(time.Unix(t.CompletionOn, 0))
	}
	return 0
}

// NewPool builds and authenticates one instance per config entry. Instances
// that fail to log in are kept in the pool; later requests retry the session.
func NewPool(ctx context.Context, cfgs []domain.TorrentClientConfig) []*Instance {
	instances := make([]*Instance, 0, len(cfgs))
	for _, cfg := range cfgs {
		inst := NewInstance(cfg)
		if err := inst.Login(ctx); err != nil {
			log.Error().Err(err).Str("instance", inst.Name()).
				Msg("initial qbittorrent login failed")
		} else {
			log.Info().Str("instance", inst.Name()).Msg("connected to qbittorrent")
		}
		instances = append(instances, inst)
	}
	return instances
}
