// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package arr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/reclaimarr/internal/domain"
)

// Radarr exposes a movie catalog as evictable movies.
type Radarr struct {
	client       *client
	protectedTag string
	historyLimit int
}

// NewRadarr constructs a Radarr catalog adapter.
func NewRadarr(cfg *domain.CatalogConfig, protectedTag string, historyLimit int) *Radarr {
	return &Radarr{
		client:       newClient(cfg),
		protectedTag: protectedTag,
		historyLimit: historyLimit,
	}
}

func (r *Radarr) Name() string    { return r.client.name }
func (r *Radarr) Kind() MediaKind { return MediaKindMovie }

// FreeSpace reports free bytes on the configured disk path.
func (r *Radarr) FreeSpace(ctx context.Context) (int64, error) {
	return r.client.freeSpace(ctx)
}

type movieFile struct {
	ID        int64     `json:"id"`
	Size      int64     `json:"size"`
	DateAdded time.Time `json:"dateAdded"`
}

type movie struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	HasFile   bool       `json:"hasFile"`
	Tags      []int64    `json:"tags"`
	MovieFile *movieFile `json:"movieFile"`
}

// ListEvictable returns every downloaded, non-protected movie sorted by its
// file import date, oldest first.
func (r *Radarr) ListEvictable(ctx context.Context) ([]LibraryItem, error) {
	protectedID, err := r.client.tagID(ctx, r.protectedTag)
	if err != nil {
		if !errors.Is(err, ErrProtectedTagMissing) {
			return nil, err
		}
		log.Warn().Str("catalog", r.client.name).Str("tag", r.protectedTag).
			Msg("protected tag does not exist, nothing will be excluded")
	}

	var movies []movie
	if err := r.client.getJSON(ctx, "movie", nil, &movies); err != nil {
		return nil, err
	}

	var items []LibraryItem
	for _, m := range movies {
		if !m.HasFile || m.MovieFile == nil {
			continue
		}
		if protectedID != 0 && hasTag(m.Tags, protectedID) {
			log.Debug().Str("catalog", r.client.name).Str("movie", m.Title).
				Msg("skipping protected movie")
			continue
		}
		items = append(items, LibraryItem{
			ID:        m.ID,
			Title:     m.Title,
			SizeBytes: m.MovieFile.Size,
			AddedAt:   m.MovieFile.DateAdded,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AddedAt.Before(items[j].AddedAt)
	})

	return items, nil
}

func (r *Radarr) movieHistory(ctx context.Context, item LibraryItem) ([]historyRecord, error) {
	query := url.Values{"movieId": {strconv.FormatInt(item.ID, 10)}}
	var records []historyRecord
	if err := r.client.getJSON(ctx, "history/movie", query, &records); err != nil {
		return nil, err
	}
	if len(records) > r.historyLimit {
		return nil, fmt.Errorf("%s: movie %d has %d history records: %w",
			r.client.name, item.ID, len(records), ErrTooManyRecords)
	}
	return records, nil
}

// HistoryHashes returns the download IDs of grab events for the movie.
func (r *Radarr) HistoryHashes(ctx context.Context, item LibraryItem) ([]string, error) {
	records, err := r.movieHistory(ctx, item)
	if err != nil {
		return nil, err
	}

	var hashes []string
	for _, rec := range records {
		if rec.EventType == "grabbed" && rec.DownloadID != "" {
			hashes = append(hashes, rec.DownloadID)
		}
	}
	return hashes, nil
}

// ImportSources returns the source titles of the movie's import events.
func (r *Radarr) ImportSources(ctx context.Context, item LibraryItem) ([]string, error) {
	records, err := r.movieHistory(ctx, item)
	if err != nil {
		return nil, err
	}

	var sources []string
	for _, rec := range records {
		if rec.EventType == "downloadFolderImported" && rec.SourceTitle != "" {
			sources = append(sources, rec.SourceTitle)
		}
	}
	return sources, nil
}

// DeleteItem removes the movie and its file without adding an import
// exclusion, so it can be re-added later.
func (r *Radarr) DeleteItem(ctx context.Context, item LibraryItem) error {
	query := url.Values{
		"deleteFiles":        {"true"},
		"addImportExclusion": {"false"},
	}
	return r.client.do(ctx, http.MethodDelete, fmt.Sprintf("movie/%d", item.ID), query, nil)
}
