// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes pass-level counters on the /metrics endpoint.
type Metrics struct {
	PassesTotal     *prometheus.CounterVec
	ItemsEvicted    prometheus.Counter
	TorrentsDeleted prometheus.Counter
	FreedBytes      prometheus.Counter
	FreeSpaceBytes  *prometheus.GaugeVec
}

// NewMetrics registers the pass metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PassesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reclaimarr_passes_total",
			Help: "Reclamation passes by result.",
		}, []string{"catalog", "result"}),
		ItemsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "reclaimarr_items_evicted_total",
			Help: "Library items removed from catalogs.",
		}),
		TorrentsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "reclaimarr_torrents_deleted_total",
			Help: "Torrent artifacts deleted from download clients.",
		}),
		FreedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "reclaimarr_freed_bytes_total",
			Help: "Bytes reclaimed by evictions.",
		}),
		FreeSpaceBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reclaimarr_free_space_bytes",
			Help: "Last observed free space per catalog disk path.",
		}, []string{"catalog"}),
	}
}
