// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"time"

	qbt "github.com/autobrr/go-qbittorrent"

	"github.com/autobrr/reclaimarr/internal/qbittorrent"
)

// SeedGuard decides whether an artifact has seeded long enough to be
// deleted. It is evaluated per artifact at deletion time, never cached.
type SeedGuard struct {
	Minimum time.Duration

	now func() time.Time
}

// NewSeedGuard returns a guard with the given minimum seeding duration.
func NewSeedGuard(minimum time.Duration) *SeedGuard {
	return &SeedGuard{
		Minimum: minimum,
		now:     time.Now,
	}
}

// Admit reports whether the torrent may be deleted, along with the seeding
// time it was judged on.
func (g *SeedGuard) Admit(t qbt.Torrent) (bool, time.Duration) {
	seeded := qbittorrent.SeedTime(t, g.now())
	return seeded >= g.Minimum, seeded
}
