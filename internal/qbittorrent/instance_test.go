// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"testing"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
)

func TestSeedTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		torrent qbt.Torrent
		want    time.Duration
	}{
		{
			name:    "live counter preferred",
			torrent: qbt.Torrent{SeedingTime: 3600, CompletionOn: now.Add(-48 * time.Hour).Unix()},
			want:    time.Hour,
		},
		{
			name:    "falls back to completion time",
			torrent: qbt.Torrent{SeedingTime: 0, CompletionOn: now.Add(-48 * time.Hour).Unix()},
			want:    48 * time.Hour,
		},
		{
			name:    "never completed",
			torrent: qbt.Torrent{},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SeedTime(tt.torrent, now))
		})
	}
}
