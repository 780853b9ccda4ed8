// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"testing"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
)

func TestSeedGuardAdmit(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	guard := NewSeedGuard(30 * 24 * time.Hour)
	guard.now = func() time.Time { return now }

	tests := []struct {
		name    string
		torrent qbt.Torrent
		admit   bool
	}{
		{
			name:    "seeded past minimum",
			torrent: qbt.Torrent{SeedingTime: int64((31 * 24 * time.Hour).Seconds())},
			admit:   true,
		},
		{
			name:    "exactly at minimum",
			torrent: qbt.Torrent{SeedingTime: int64((30 * 24 * time.Hour).Seconds())},
			admit:   true,
		},
		{
			name:    "one second short",
			torrent: qbt.Torrent{SeedingTime: int64((30 * 24 * time.Hour).Seconds()) - 1},
			admit:   false,
		},
		{
			name:    "completion fallback admits",
			torrent: qbt.Torrent{CompletionOn: now.Add(-40 * 24 * time.Hour).Unix()},
			admit:   true,
		},
		{
			name:    "completion fallback rejects",
			torrent: qbt.Torrent{CompletionOn: now.Add(-10 * 24 * time.Hour).Unix()},
			admit:   false,
		},
		{
			name:    "never completed",
			torrent: qbt.Torrent{},
			admit:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, _ := guard.Admit(tt.torrent)
			assert.Equal(t, tt.admit, ok)
		})
	}
}

func TestSeedGuardZeroMinimumAdmitsEverything(t *testing.T) {
	t.Parallel()

	guard := NewSeedGuard(0)
	ok, _ := guard.Admit(qbt.Torrent{})
	assert.True(t, ok)
}
