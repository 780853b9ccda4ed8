// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package arr talks to Sonarr and Radarr style media catalogs.
package arr

import (
	"context"
	"errors"
	"time"
)

// MediaKind distinguishes the two catalog flavors.
type MediaKind string

const (
	MediaKindSeries MediaKind = "series"
	MediaKindMovie  MediaKind = "movie"
)

var (
	// ErrPathNotFound means the configured disk path is not among the paths
	// the catalog reports. This is a configuration error and aborts the pass.
	ErrPathNotFound = errors.New("configured disk path not reported by catalog")

	// ErrProtectedTagMissing means the protected tag does not exist on the
	// catalog, so no item can be excluded by it.
	ErrProtectedTagMissing = errors.New("protected tag not found on catalog")

	// ErrTooManyRecords means a history lookup returned more records than the
	// configured sanity cap, so the result cannot be trusted.
	ErrTooManyRecords = errors.New("history returned too many records")
)

// LibraryItem is one evictable unit: a movie or a single episode file.
type LibraryItem struct {
	// ID is the movie ID (Radarr) or episode ID (Sonarr).
	ID int64

	// FileID is the episode file ID for series items; zero for movies.
	FileID int64

	Title     string
	SizeBytes int64

	// AddedAt orders eviction. For episodes this is the most recent file
	// import date of the episode's season, so whole seasons age together.
	AddedAt time.Time

	Season  int
	Episode int
}

// CatalogService is the catalog-side surface the reclamation pass needs.
// Implementations must not retry failed requests.
type CatalogService interface {
	Name() string
	Kind() MediaKind

	// FreeSpace reports free bytes on the configured disk path.
	FreeSpace(ctx context.Context) (int64, error)

	// ListEvictable returns all deletable items, oldest first, with items
	// carrying the protected tag already removed.
	ListEvictable(ctx context.Context) ([]LibraryItem, error)

	// HistoryHashes returns the download IDs of grab events for the item.
	HistoryHashes(ctx context.Context, item LibraryItem) ([]string, error)

	// ImportSources returns the raw source titles recorded when the item's
	// file was imported, for name-based torrent matching.
	ImportSources(ctx context.Context, item LibraryItem) ([]string, error)

	// DeleteItem removes the item and its file from the catalog.
	DeleteItem(ctx context.Context, item LibraryItem) error
}
