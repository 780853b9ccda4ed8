// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"encoding/json"
	"fmt"

	"github.com/autobrr/reclaimarr/internal/arr"
)

// ImportEvent is one library addition announced by a catalog webhook.
type ImportEvent struct {
	Kind      arr.MediaKind
	Title     string
	SizeBytes int64

	// Upgrade marks a quality upgrade of an existing item rather than a new
	// addition; it is reported separately and replaces the old file.
	Upgrade bool
}

type webhookSeries struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type webhookEpisode struct {
	ID            int64 `json:"id"`
	SeasonNumber  int   `json:"seasonNumber"`
	EpisodeNumber int   `json:"episodeNumber"`
}

type webhookFile struct {
	Size int64 `json:"size"`
}

type sonarrWebhook struct {
	EventType   string           `json:"eventType"`
	Series      *webhookSeries   `json:"series"`
	Episodes    []webhookEpisode `json:"episodes"`
	EpisodeFile *webhookFile     `json:"episodeFile"`
	IsUpgrade   bool             `json:"isUpgrade"`
}

type webhookMovie struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type radarrWebhook struct {
	EventType string        `json:"eventType"`
	Movie     *webhookMovie `json:"movie"`
	MovieFile *webhookFile  `json:"movieFile"`
	IsUpgrade bool          `json:"isUpgrade"`
}

// ParseSonarrWebhook extracts import events from a Sonarr webhook body. Test
// pings and payloads without a series body yield no events and no error.
func ParseSonarrWebhook(body []byte) ([]ImportEvent, error) {
	var payload sonarrWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid sonarr webhook payload: %w", err)
	}
	if payload.EventType == "Test" || payload.Series == nil || len(payload.Episodes) == 0 {
		return nil, nil
	}

	var size int64
	if payload.EpisodeFile != nil {
		size = payload.EpisodeFile.Size
	}

	events := make([]ImportEvent, 0, len(payload.Episodes))
	for _, ep := range payload.Episodes {
		events = append(events, ImportEvent{
			Kind:      arr.MediaKindSeries,
			Title:     fmt.Sprintf("%s S%02dE%02d", payload.Series.Title, ep.SeasonNumber, ep.EpisodeNumber),
			SizeBytes: size,
			Upgrade:   payload.IsUpgrade,
		})
	}
	return events, nil
}

// ParseRadarrWebhook extracts the import event from a Radarr webhook body.
// Test pings and payloads without a movie body yield no event and no error.
func ParseRadarrWebhook(body []byte) ([]ImportEvent, error) {
	var payload radarrWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid radarr webhook payload: %w", err)
	}
	if payload.EventType == "Test" || payload.Movie == nil {
		return nil, nil
	}

	var size int64
	if payload.MovieFile != nil {
		size = payload.MovieFile.Size
	}

	return []ImportEvent{{
		Kind:      arr.MediaKindMovie,
		Title:     payload.Movie.Title,
		SizeBytes: size,
		Upgrade:   payload.IsUpgrade,
	}}, nil
}
