// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/reclaimarr/internal/arr"
	"github.com/autobrr/reclaimarr/internal/domain"
)

// PassReport summarizes one reclamation pass for notification delivery.
type PassReport struct {
	Catalog string
	DryRun  bool

	Added   []string
	Updated []string

	FreeBytes     int64
	IncomingBytes int64
	Deficit       int64

	EvictedTitles []string
	FreedBytes    int64
	Partial       bool

	Actions []ActionRecord

	// Err is set when the pass aborted before any destructive action.
	Err error
}

// Reporter receives pass reports. Delivery failures must never propagate
// back into the pass.
type Reporter interface {
	ReportPass(report PassReport)
}

type catalogEntry struct {
	svc       arr.CatalogService
	threshold int64
}

// Service wires the webhook intake to the reclamation pass: series imports
// are debounced into batches, movie imports run immediately. At most one
// pass per catalog kind runs at a time.
type Service struct {
	dryRun   bool
	catalogs map[arr.MediaKind]catalogEntry

	correlator *Correlator
	guard      *SeedGuard
	debouncer  *Debouncer
	reporter   Reporter
	metrics    *Metrics

	// immediateMu serializes movie passes, mirroring the quiet-period
	// serialization the debouncer gives series passes.
	immediateMu sync.Mutex
}

// NewService assembles the reclamation service from config and its
// collaborators. Catalogs may be nil when unconfigured.
func NewService(cfg *domain.Config, sonarr, radarr arr.CatalogService, stores []Store, reporter Reporter, metrics *Metrics) *Service {
	catalogs := make(map[arr.MediaKind]catalogEntry)
	if sonarr != nil {
		catalogs[arr.MediaKindSeries] = catalogEntry{svc: sonarr, threshold: cfg.Sonarr.ThresholdBytes()}
	}
	if radarr != nil {
		catalogs[arr.MediaKindMovie] = catalogEntry{svc: radarr, threshold: cfg.Radarr.ThresholdBytes()}
	}

	s := &Service{
		dryRun:     cfg.DryRun,
		catalogs:   catalogs,
		correlator: NewCorrelator(stores, cfg.MovieCategories, cfg.TVCategories),
		guard:      NewSeedGuard(cfg.MinSeedTime()),
		reporter:   reporter,
		metrics:    metrics,
	}
	s.debouncer = NewDebouncer(cfg.DebounceWindow(), func(batch []ImportEvent) {
		s.processBatch(context.Background(), arr.MediaKindSeries, batch)
	})
	return s
}

// SubmitSeries buffers series import events behind the debounce window.
func (s *Service) SubmitSeries(events []ImportEvent) {
	if len(events) == 0 {
		return
	}
	log.Debug().Int("events", len(events)).Msg("buffering series imports")
	s.debouncer.Submit(events...)
}

// SubmitMovies processes movie import events immediately, one batch at a
// time.
func (s *Service) SubmitMovies(ctx context.Context, events []ImportEvent) {
	if len(events) == 0 {
		return
	}
	s.immediateMu.Lock()
	defer s.immediateMu.Unlock()
	s.processBatch(ctx, arr.MediaKindMovie, events)
}

// Shutdown drains any pending series batch.
func (s *Service) Shutdown() {
	s.debouncer.Flush()
}

func (s *Service) processBatch(ctx context.Context, kind arr.MediaKind, events []ImportEvent) {
	entry, ok := s.catalogs[kind]
	if !ok {
		log.Error().Str("kind", string(kind)).Msg("no catalog configured for import events")
		return
	}

	report := PassReport{
		Catalog: entry.svc.Name(),
		DryRun:  s.dryRun,
	}
	var incoming int64
	for _, ev := range events {
		incoming += ev.SizeBytes
		if ev.Upgrade {
			report.Updated = append(report.Updated, ev.Title)
		} else {
			report.Added = append(report.Added, ev.Title)
		}
	}
	report.IncomingBytes = incoming

	started := time.Now()
	s.runPass(ctx, entry, &report)
	elapsed := time.Since(started)

	result := "ok"
	if report.Err != nil {
		result = "error"
		log.Error().Err(report.Err).Str("catalog", report.Catalog).
			Dur("elapsed", elapsed).Msg("reclamation pass aborted")
	} else {
		log.Info().Str("catalog", report.Catalog).
			Int("added", len(report.Added)).
			Int("updated", len(report.Updated)).
			Int("evicted", len(report.EvictedTitles)).
			Int64("freedBytes", report.FreedBytes).
			Bool("dryRun", report.DryRun).
			Dur("elapsed", elapsed).
			Msg("reclamation pass finished")
	}
	if s.metrics != nil {
		s.metrics.PassesTotal.WithLabelValues(report.Catalog, result).Inc()
	}

	if s.reporter != nil {
		s.reporter.ReportPass(report)
	}
}

// runPass is the probe, select, correlate, guard, delete sequence. Primary
// catalog failures abort before anything destructive happens; per-item and
// per-store failures are contained in the action ledger.
func (s *Service) runPass(ctx context.Context, entry catalogEntry, report *PassReport) {
	catalog := entry.svc

	free, err := catalog.FreeSpace(ctx)
	if err != nil {
		report.Err = err
		return
	}
	report.FreeBytes = free
	if s.metrics != nil {
		s.metrics.FreeSpaceBytes.WithLabelValues(catalog.Name()).Set(float64(free))
	}

	report.Deficit = Deficit(free, report.IncomingBytes, entry.threshold)
	if report.Deficit <= 0 {
		log.Debug().Str("catalog", catalog.Name()).Int64("freeBytes", free).
			Msg("free space sufficient, nothing to reclaim")
		return
	}

	items, err := catalog.ListEvictable(ctx)
	if err != nil {
		report.Err = err
		return
	}

	sel := SelectForEviction(items, report.Deficit)
	report.Partial = sel.Partial
	if sel.Partial {
		log.Warn().Str("catalog", catalog.Name()).
			Int64("deficit", report.Deficit).Int64("covered", sel.FreedBytes).
			Msg("eviction queue exhausted before deficit was covered")
	}

	for _, item := range sel.Items {
		s.evictItem(ctx, catalog, item, report)
	}
}

// evictItem deletes one item's torrent artifacts (seed guard permitting) and
// then the item itself. Failures are recorded and the pass moves on.
func (s *Service) evictItem(ctx context.Context, catalog arr.CatalogService, item arr.LibraryItem, report *PassReport) {
	artifacts, records := s.correlator.Correlate(ctx, catalog, item)
	report.Actions = append(report.Actions, records...)

	for _, a := range artifacts {
		report.Actions = append(report.Actions, s.deleteArtifact(ctx, a))
	}

	if s.dryRun {
		log.Info().Str("catalog", catalog.Name()).Str("item", item.Title).
			Int64("sizeBytes", item.SizeBytes).Msg("dry run: would delete library item")
	} else if err := catalog.DeleteItem(ctx, item); err != nil {
		log.Error().Err(err).Str("catalog", catalog.Name()).Str("item", item.Title).
			Msg("failed to delete library item")
		report.Actions = append(report.Actions, ActionRecord{
			Name:    item.Title,
			Outcome: OutcomeNotDeleted,
			Reason:  ReasonError(err),
		})
		return
	}

	report.EvictedTitles = append(report.EvictedTitles, item.Title)
	report.FreedBytes += item.SizeBytes
	if s.metrics != nil && !s.dryRun {
		s.metrics.ItemsEvicted.Inc()
		s.metrics.FreedBytes.Add(float64(item.SizeBytes))
	}
}

func (s *Service) deleteArtifact(ctx context.Context, a Artifact) ActionRecord {
	record := ActionRecord{
		Name:     a.Torrent.Name,
		Hash:     a.Torrent.Hash,
		Store:    a.Store.Name(),
		Strategy: a.Strategy,
	}

	admitted, seeded := s.guard.Admit(a.Torrent)
	if !admitted {
		log.Debug().Str("torrent", a.Torrent.Name).Str("store", a.Store.Name()).
			Dur("seeded", seeded).Msg("seed time incomplete, keeping torrent")
		record.Outcome = OutcomeNotDeleted
		record.Reason = ReasonSeedTimeIncomplete
		return record
	}

	if s.dryRun {
		log.Info().Str("torrent", a.Torrent.Name).Str("store", a.Store.Name()).
			Msg("dry run: would delete torrent with data")
		record.Outcome = OutcomeDeleted
		record.Reason = ReasonDryRun
		return record
	}

	if err := a.Store.Delete(ctx, []string{a.Torrent.Hash}, true); err != nil {
		record.Outcome = OutcomeNotDeleted
		record.Reason = ReasonError(err)
		return record
	}

	log.Info().Str("torrent", a.Torrent.Name).Str("store", a.Store.Name()).
		Str("strategy", a.Strategy).Msg("deleted torrent with data")
	record.Outcome = OutcomeDeleted
	if s.metrics != nil {
		s.metrics.TorrentsDeleted.Inc()
	}
	return record
}
