// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/reclaimarr/internal/arr"
)

// fakeStore implements Store in memory.
type fakeStore struct {
	name       string
	categories map[string][]qbt.Torrent
	files      map[string][]string

	mu      sync.Mutex
	deleted [][]string
	listErr error
	infoErr error
}

func (f *fakeStore) Name() string { return f.name }

func (f *fakeStore) ListByCategory(_ context.Context, category string) ([]qbt.Torrent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.categories[category], nil
}

func (f *fakeStore) Files(_ context.Context, hash string) ([]string, error) {
	return f.files[strings.ToLower(hash)], nil
}

func (f *fakeStore) Info(_ context.Context, hashes []string) (map[string]qbt.Torrent, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	all := make(map[string]qbt.Torrent)
	for _, torrents := range f.categories {
		for _, t := range torrents {
			all[strings.ToLower(t.Hash)] = t
		}
	}
	found := make(map[string]qbt.Torrent)
	for _, h := range hashes {
		if t, ok := all[strings.ToLower(h)]; ok {
			found[strings.ToLower(h)] = t
		}
	}
	return found, nil
}

func (f *fakeStore) Delete(_ context.Context, hashes []string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, hashes)
	return nil
}

// fakeCatalog implements arr.CatalogService for correlation tests.
type fakeCatalog struct {
	name       string
	kind       arr.MediaKind
	free       int64
	freeErr    error
	items      []arr.LibraryItem
	hashes     map[int64][]string
	hashErr    error
	sources    map[int64][]string
	sourcesErr error

	mu          sync.Mutex
	deletedIDs  []int64
	deleteErr   error
	listErr     error
	freeByCall  []int64
	freeCallIdx int
}

func (f *fakeCatalog) Name() string        { return f.name }
func (f *fakeCatalog) Kind() arr.MediaKind { return f.kind }

func (f *fakeCatalog) FreeSpace(context.Context) (int64, error) {
	if f.freeErr != nil {
		return 0, f.freeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.freeCallIdx < len(f.freeByCall) {
		v := f.freeByCall[f.freeCallIdx]
		f.freeCallIdx++
		return v, nil
	}
	return f.free, nil
}

func (f *fakeCatalog) ListEvictable(context.Context) ([]arr.LibraryItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeCatalog) HistoryHashes(_ context.Context, item arr.LibraryItem) ([]string, error) {
	if f.hashErr != nil {
		return nil, f.hashErr
	}
	return f.hashes[item.ID], nil
}

func (f *fakeCatalog) ImportSources(_ context.Context, item arr.LibraryItem) ([]string, error) {
	if f.sourcesErr != nil {
		return nil, f.sourcesErr
	}
	return f.sources[item.ID], nil
}

func (f *fakeCatalog) DeleteItem(_ context.Context, item arr.LibraryItem) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, item.ID)
	return nil
}

func movieCorrelator(stores ...Store) *Correlator {
	return NewCorrelator(stores, []string{"movies", "movies.cross-seed"}, []string{"tv"})
}

func TestCorrelateByHistory(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {{Hash: "AABB", Name: "Some.Movie.2023.1080p"}},
		},
	}
	catalog := &fakeCatalog{
		kind:   arr.MediaKindMovie,
		hashes: map[int64][]string{1: {"aabb"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 1)
	assert.Equal(t, StrategyHistory, artifacts[0].Strategy)
	assert.Equal(t, "AABB", artifacts[0].Torrent.Hash)
}

func TestCorrelateByNameMatch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {
				{Hash: "AABB", Name: "Some.Movie.2023.1080p.BluRay"},
				{Hash: "CCDD", Name: "Other.Movie.2020"},
			},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		sources: map[int64][]string{1: {"Some.Movie.2023.1080p.BluRay.mkv"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 1)
	assert.Equal(t, StrategyMatch, artifacts[0].Strategy)
	assert.Equal(t, "AABB", artifacts[0].Torrent.Hash)
}

func TestCorrelateNameMatchFindsCrossSeeds(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies":            {{Hash: "AABB", Name: "Some.Movie.2023"}},
			"movies.cross-seed": {{Hash: "EEFF", Name: "Some.Movie.2023"}},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		sources: map[int64][]string{1: {"Some.Movie.2023"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	assert.Len(t, artifacts, 2)
}

func TestCorrelateNameMatchSpansStores(t *testing.T) {
	t.Parallel()

	store1 := &fakeStore{
		name:       "qb1",
		categories: map[string][]qbt.Torrent{"movies": {{Hash: "AABB", Name: "Some.Movie.2023"}}},
	}
	store2 := &fakeStore{
		name:       "qb2",
		categories: map[string][]qbt.Torrent{"movies": {{Hash: "CCDD", Name: "Some.Movie.2023"}}},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		sources: map[int64][]string{1: {"Some.Movie.2023"}},
	}

	artifacts, records := movieCorrelator(store1, store2).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 2)
	names := []string{artifacts[0].Store.Name(), artifacts[1].Store.Name()}
	assert.ElementsMatch(t, []string{"qb1", "qb2"}, names)
}

func TestCorrelateByFileMatch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {{Hash: "AABB", Name: "Some Movie Pack"}},
		},
		files: map[string][]string{
			"aabb": {"extras/sample.mkv", "Some.Movie.2023.1080p.mkv"},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		sources: map[int64][]string{1: {"Some.Movie.2023.1080p.mkv"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 1)
	assert.Equal(t, StrategyMatch, artifacts[0].Strategy)
}

func TestCorrelateFileMatchFindsCrossSeedOfNameMatchedSource(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {
				{Hash: "AAA", Name: "Some.Movie.2020"},
				{Hash: "BBB", Name: "Totally.Different.Pack"},
			},
		},
		files: map[string][]string{
			"bbb": {"Some.Movie.2020.mkv"},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		sources: map[int64][]string{1: {"Some.Movie.2020.mkv"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 2)
	hashes := []string{artifacts[0].Torrent.Hash, artifacts[1].Torrent.Hash}
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, hashes)
}

func TestCorrelateFileMatchClaimsEveryMatchingCandidate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {
				{Hash: "AAA", Name: "First Pack"},
				{Hash: "BBB", Name: "Second Pack"},
			},
		},
		files: map[string][]string{
			"aaa": {"Some.Movie.2020.mkv"},
			"bbb": {"extras/readme.txt", "Some.Movie.2020.mkv"},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		sources: map[int64][]string{1: {"Some.Movie.2020.mkv"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 2)
	hashes := []string{artifacts[0].Torrent.Hash, artifacts[1].Torrent.Hash}
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, hashes)
}

func TestCorrelateUnmatchedSourcesRecordedAlongsideHistory(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {{Hash: "AAA", Name: "Some.Movie.2020"}},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		hashes:  map[int64][]string{1: {"AAA"}},
		sources: map[int64][]string{1: {"Manual.Import.Nobody.Has.mkv"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Len(t, artifacts, 1)
	assert.Equal(t, StrategyHistory, artifacts[0].Strategy)
	require.Len(t, records, 1)
	assert.Equal(t, OutcomeNotDeleted, records[0].Outcome)
	assert.Equal(t, StrategyMatch, records[0].Strategy)
	assert.Equal(t, ReasonNoMatch, records[0].Reason)
}

func TestCorrelateDeduplicatesAcrossStrategies(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {{Hash: "AABB", Name: "Some.Movie.2023"}},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		hashes:  map[int64][]string{1: {"AABB"}},
		sources: map[int64][]string{1: {"Some.Movie.2023"}},
	}

	artifacts, _ := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Len(t, artifacts, 1)
	assert.Equal(t, StrategyHistory, artifacts[0].Strategy)
}

func TestCorrelateSameHashOnTwoStores(t *testing.T) {
	t.Parallel()

	torrent := qbt.Torrent{Hash: "AABB", Name: "Some.Movie.2023"}
	store1 := &fakeStore{name: "qb1", categories: map[string][]qbt.Torrent{"movies": {torrent}}}
	store2 := &fakeStore{name: "qb2", categories: map[string][]qbt.Torrent{"movies": {torrent}}}
	catalog := &fakeCatalog{
		kind:   arr.MediaKindMovie,
		hashes: map[int64][]string{1: {"AABB"}},
	}

	artifacts, _ := movieCorrelator(store1, store2).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	assert.Len(t, artifacts, 2)
}

func TestCorrelateNoMatchRecord(t *testing.T) {
	t.Parallel()

	store := &fakeStore{name: "qb1"}
	catalog := &fakeCatalog{kind: arr.MediaKindMovie}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	assert.Empty(t, artifacts)
	require.Len(t, records, 1)
	assert.Equal(t, OutcomeNotDeleted, records[0].Outcome)
	assert.Equal(t, ReasonNoMatch, records[0].Reason)
	assert.Equal(t, "Some Movie", records[0].Name)
}

func TestCorrelateUnknownHashRecordsNotFound(t *testing.T) {
	t.Parallel()

	store := &fakeStore{name: "qb1"}
	catalog := &fakeCatalog{
		kind:   arr.MediaKindMovie,
		hashes: map[int64][]string{1: {"FFEE"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	assert.Empty(t, artifacts)
	require.Len(t, records, 1)
	assert.Equal(t, ReasonNotFound, records[0].Reason)
	assert.Equal(t, "FFEE", records[0].Hash)
	assert.Equal(t, StrategyHistory, records[0].Strategy)
}

func TestCorrelateHistoryErrorFallsBackToMatch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {{Hash: "AABB", Name: "Some.Movie.2023"}},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		hashErr: arr.ErrTooManyRecords,
		sources: map[int64][]string{1: {"Some.Movie.2023"}},
	}

	artifacts, records := movieCorrelator(store).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 1)
	assert.Equal(t, StrategyMatch, artifacts[0].Strategy)
}

func TestCorrelateStoreFailureContained(t *testing.T) {
	t.Parallel()

	broken := &fakeStore{name: "down", listErr: errors.New("connection refused"), infoErr: errors.New("connection refused")}
	healthy := &fakeStore{
		name: "qb1",
		categories: map[string][]qbt.Torrent{
			"movies": {{Hash: "AABB", Name: "Some.Movie.2023"}},
		},
	}
	catalog := &fakeCatalog{
		kind:    arr.MediaKindMovie,
		hashes:  map[int64][]string{1: {"AABB"}},
		sources: map[int64][]string{1: {"Some.Movie.2023"}},
	}

	artifacts, records := movieCorrelator(broken, healthy).Correlate(context.Background(), catalog, arr.LibraryItem{ID: 1, Title: "Some Movie"})
	require.Empty(t, records)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "qb1", artifacts[0].Store.Name())
}
