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

// Sonarr exposes a series catalog as evictable episode files.
type Sonarr struct {
	client       *client
	protectedTag string
	historyLimit int
}

// NewSonarr constructs a Sonarr catalog adapter.
func NewSonarr(cfg *domain.CatalogConfig, protectedTag string, historyLimit int) *Sonarr {
	return &Sonarr{
		client:       newClient(cfg),
		protectedTag: protectedTag,
		historyLimit: historyLimit,
	}
}

func (s *Sonarr) Name() string    { return s.client.name }
func (s *Sonarr) Kind() MediaKind { return MediaKindSeries }

// FreeSpace reports free bytes on the configured disk path.
func (s *Sonarr) FreeSpace(ctx context.Context) (int64, error) {
	return s.client.freeSpace(ctx)
}

type series struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Tags  []int64 `json:"tags"`
}

type episodeFile struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"seasonNumber"`
	Size         int64     `json:"size"`
	DateAdded    time.Time `json:"dateAdded"`
}

type episode struct {
	ID            int64  `json:"id"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	EpisodeFileID int64  `json:"episodeFileId"`
	HasFile       bool   `json:"hasFile"`
	Title         string `json:"title"`
}

// ListEvictable returns every episode with a file from non-protected series.
// Each episode is stamped with the newest file import date of its season, so
// episodes of a recently active season sort together at the back of the
// queue; ties break on (season, episode).
func (s *Sonarr) ListEvictable(ctx context.Context) ([]LibraryItem, error) {
	protectedID, err := s.client.tagID(ctx, s.protectedTag)
	if err != nil {
		if !errors.Is(err, ErrProtectedTagMissing) {
			return nil, err
		}
		log.Warn().Str("catalog", s.client.name).Str("tag", s.protectedTag).
			Msg("protected tag does not exist, nothing will be excluded")
	}

	var allSeries []series
	if err := s.client.getJSON(ctx, "series", nil, &allSeries); err != nil {
		return nil, err
	}

	var items []LibraryItem
	for _, sr := range allSeries {
		if protectedID != 0 && hasTag(sr.Tags, protectedID) {
			log.Debug().Str("catalog", s.client.name).Str("series", sr.Title).
				Msg("skipping protected series")
			continue
		}

		query := url.Values{"seriesId": {strconv.FormatInt(sr.ID, 10)}}

		var files []episodeFile
		if err := s.client.getJSON(ctx, "episodefile", query, &files); err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}

		fileByID := make(map[int64]episodeFile, len(files))
		seasonAdded := make(map[int]time.Time)
		for _, f := range files {
			fileByID[f.ID] = f
			if f.DateAdded.After(seasonAdded[f.SeasonNumber]) {
				seasonAdded[f.SeasonNumber] = f.DateAdded
			}
		}

		var episodes []episode
		if err := s.client.getJSON(ctx, "episode", query, &episodes); err != nil {
			return nil, err
		}

		for _, ep := range episodes {
			if !ep.HasFile || ep.EpisodeFileID == 0 {
				continue
			}
			f, ok := fileByID[ep.EpisodeFileID]
			if !ok {
				continue
			}
			items = append(items, LibraryItem{
				ID:        ep.ID,
				FileID:    ep.EpisodeFileID,
				Title:     fmt.Sprintf("%s S%02dE%02d", sr.Title, ep.SeasonNumber, ep.EpisodeNumber),
				SizeBytes: f.Size,
				AddedAt:   seasonAdded[ep.SeasonNumber],
				Season:    ep.SeasonNumber,
				Episode:   ep.EpisodeNumber,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.Before(b.AddedAt)
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Episode < b.Episode
	})

	return items, nil
}

func (s *Sonarr) episodeHistory(ctx context.Context, item LibraryItem) ([]historyRecord, error) {
	query := url.Values{
		"episodeId": {strconv.FormatInt(item.ID, 10)},
		"pageSize":  {strconv.Itoa(s.historyLimit)},
	}
	var page historyPage
	if err := s.client.getJSON(ctx, "history", query, &page); err != nil {
		return nil, err
	}
	if page.TotalRecords > s.historyLimit {
		return nil, fmt.Errorf("%s: episode %d has %d history records: %w",
			s.client.name, item.ID, page.TotalRecords, ErrTooManyRecords)
	}
	return page.Records, nil
}

// HistoryHashes returns the download IDs of grab events for the episode.
func (s *Sonarr) HistoryHashes(ctx context.Context, item LibraryItem) ([]string, error) {
	records, err := s.episodeHistory(ctx, item)
	if err != nil {
		return nil, err
	}

	var hashes []string
	for _, r := range records {
		if r.EventType == "grabbed" && r.DownloadID != "" {
			hashes = append(hashes, r.DownloadID)
		}
	}
	return hashes, nil
}

// ImportSources returns the source titles of the episode's import events.
func (s *Sonarr) ImportSources(ctx context.Context, item LibraryItem) ([]string, error) {
	records, err := s.episodeHistory(ctx, item)
	if err != nil {
		return nil, err
	}

	var sources []string
	for _, r := range records {
		if r.EventType == "downloadFolderImported" && r.SourceTitle != "" {
			sources = append(sources, r.SourceTitle)
		}
	}
	return sources, nil
}

// DeleteItem removes the episode's file. The episode record itself stays so
// the series can grab it again later.
func (s *Sonarr) DeleteItem(ctx context.Context, item LibraryItem) error {
	return s.client.do(ctx, http.MethodDelete, fmt.Sprintf("episodefile/%d", item.FileID), nil, nil)
}
