// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"context"
	"strings"
	"sync"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/reclaimarr/internal/arr"
)

// Store is the torrent-store surface the pass needs from one download
// client. Implemented by qbittorrent.Instance; faked in tests.
type Store interface {
	Name() string
	ListByCategory(ctx context.Context, category string) ([]qbt.Torrent, error)
	Files(ctx context.Context, hash string) ([]string, error)
	Info(ctx context.Context, hashes []string) (map[string]qbt.Torrent, error)
	Delete(ctx context.Context, hashes []string, deleteFiles bool) error
}

// Artifact is one torrent correlated with a library item, on the store that
// holds it.
type Artifact struct {
	Store    Store
	Torrent  qbt.Torrent
	Strategy string
}

// Correlator finds the torrent artifacts behind a library item across all
// configured stores, by grab history first and by name matching second.
type Correlator struct {
	stores     []Store
	categories map[arr.MediaKind][]string
}

// NewCorrelator builds a correlator over the given stores, searching the
// listed categories per media kind during name matching.
func NewCorrelator(stores []Store, movieCategories, tvCategories []string) *Correlator {
	return &Correlator{
		stores: stores,
		categories: map[arr.MediaKind][]string{
			arr.MediaKindMovie:  movieCategories,
			arr.MediaKindSeries: tvCategories,
		},
	}
}

type candidate struct {
	store   Store
	torrent qbt.Torrent
}

// Correlate returns every artifact found for the item, each (store, hash)
// pair at most once, history hits before name matches. Grabbed hashes no
// store knows yield not-found ledger records; a non-empty source set that
// matches nothing yields a match-strategy no-match record regardless of what
// history found, and an item with no artifacts and no records at all gets a
// single bare no-match record. Store failures are logged and skipped; they
// never fail the item.
func (c *Correlator) Correlate(ctx context.Context, catalog arr.CatalogService, item arr.LibraryItem) ([]Artifact, []ActionRecord) {
	seen := make(map[string]bool)
	key := func(store Store, hash string) string {
		return store.Name() + "|" + strings.ToLower(hash)
	}

	var (
		artifacts []Artifact
		records   []ActionRecord
	)

	hashes, err := catalog.HistoryHashes(ctx, item)
	if err != nil {
		log.Warn().Err(err).Str("item", item.Title).
			Msg("history lookup failed, falling back to name matching")
	}
	if len(hashes) > 0 {
		located := make(map[string]bool, len(hashes))
		for _, store := range c.stores {
			found, err := store.Info(ctx, hashes)
			if err != nil {
				log.Error().Err(err).Str("store", store.Name()).Str("item", item.Title).
					Msg("hash lookup failed on store")
				continue
			}
			for h, t := range found {
				located[h] = true
				k := key(store, t.Hash)
				if seen[k] {
					continue
				}
				seen[k] = true
				artifacts = append(artifacts, Artifact{Store: store, Torrent: t, Strategy: StrategyHistory})
			}
		}
		for _, h := range hashes {
			if !located[strings.ToLower(h)] {
				records = append(records, ActionRecord{
					Name:     item.Title,
					Hash:     h,
					Outcome:  OutcomeNotDeleted,
					Strategy: StrategyHistory,
					Reason:   ReasonNotFound,
				})
			}
		}
	}

	sources := c.normalizedSources(ctx, catalog, item)
	if len(sources) > 0 {
		candidates := c.listCandidates(ctx, item.Title, catalog.Kind())
		matched, matchedAny := c.matchSources(ctx, sources, candidates, seen, key)
		artifacts = append(artifacts, matched...)
		if !matchedAny {
			records = append(records, ActionRecord{
				Name:     item.Title,
				Outcome:  OutcomeNotDeleted,
				Strategy: StrategyMatch,
				Reason:   ReasonNoMatch,
			})
		}
	}

	if len(artifacts) == 0 && len(records) == 0 {
		records = append(records, ActionRecord{
			Name:    item.Title,
			Outcome: OutcomeNotDeleted,
			Reason:  ReasonNoMatch,
		})
	}
	return artifacts, records
}

func (c *Correlator) normalizedSources(ctx context.Context, catalog arr.CatalogService, item arr.LibraryItem) []string {
	raw, err := catalog.ImportSources(ctx, item)
	if err != nil {
		log.Warn().Err(err).Str("item", item.Title).Msg("import source lookup failed")
		return nil
	}

	var sources []string
	dedup := make(map[string]bool)
	for _, s := range raw {
		n := NormalizeTitle(s)
		if n == "" || dedup[n] {
			continue
		}
		dedup[n] = true
		sources = append(sources, n)
	}
	return sources
}

// listCandidates enumerates the matching categories on every store in
// parallel. A failing store contributes nothing.
func (c *Correlator) listCandidates(ctx context.Context, itemTitle string, kind arr.MediaKind) []candidate {
	var (
		mu         sync.Mutex
		candidates []candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, store := range c.stores {
		store := store
		g.Go(func() error {
			for _, category := range c.categories[kind] {
				torrents, err := store.ListByCategory(gctx, category)
				if err != nil {
					log.Error().Err(err).Str("store", store.Name()).Str("category", category).
						Str("item", itemTitle).Msg("category listing failed on store")
					continue
				}
				mu.Lock()
				for _, t := range torrents {
					candidates = append(candidates, candidate{store: store, torrent: t})
				}
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return candidates
}

// matchSources runs the name pass over all candidates first, then inspects
// the files of every candidate still unclaimed against the full source set,
// so cross-seed duplicates are found whether they match by name or by file.
// A candidate is claimed at most once; its first matching file decides. The
// second return reports whether the strategy matched anything at all,
// counting hits suppressed by the (store, hash) dedup.
func (c *Correlator) matchSources(ctx context.Context, sources []string, candidates []candidate, seen map[string]bool, key func(Store, string) string) ([]Artifact, bool) {
	sourceSet := make(map[string]bool, len(sources))
	for _, s := range sources {
		sourceSet[s] = true
	}

	var artifacts []Artifact
	matchedAny := false

	take := func(cand candidate) {
		seen[key(cand.store, cand.torrent.Hash)] = true
		artifacts = append(artifacts, Artifact{Store: cand.store, Torrent: cand.torrent, Strategy: StrategyMatch})
	}

	for _, cand := range candidates {
		if sourceSet[NormalizeTitle(cand.torrent.Name)] {
			matchedAny = true
			if !seen[key(cand.store, cand.torrent.Hash)] {
				take(cand)
			}
		}
	}

	for _, cand := range candidates {
		if seen[key(cand.store, cand.torrent.Hash)] {
			continue
		}
		files, err := cand.store.Files(ctx, cand.torrent.Hash)
		if err != nil {
			log.Error().Err(err).Str("store", cand.store.Name()).Str("hash", cand.torrent.Hash).
				Msg("file listing failed on store")
			continue
		}
		for _, f := range files {
			if sourceSet[NormalizeTitle(f)] {
				matchedAny = true
				take(cand)
				break
			}
		}
	}

	return artifacts, matchedAny
}
