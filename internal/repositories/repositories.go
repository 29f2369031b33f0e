package repositories

import (
	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// Document names inside the cache. Each is an independent flat document;
// overwriting one never touches another.
const (
	DocTracks          = "tracks"
	DocEnrichments     = "enrichments"
	DocClassifications = "classifications"
	DocRules           = "rules"
	DocJobs            = "jobs"
)

// TrackStore persists the fetched library snapshot.
type TrackStore struct {
	store cache.Store
}

// NewTrackStore creates a TrackStore over the given document cache.
func NewTrackStore(store cache.Store) *TrackStore {
	return &TrackStore{store: store}
}

// Load returns the cached tracks, or an empty slice when nothing has been
// fetched yet.
func (s *TrackStore) Load() ([]models.Track, error) {
	var tracks []models.Track
	if err := s.store.Get(DocTracks, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Save replaces the cached track snapshot.
func (s *TrackStore) Save(tracks []models.Track) error {
	return s.store.Put(DocTracks, tracks)
}

// EnrichmentStore persists external feature entries keyed by track id.
type EnrichmentStore struct {
	store cache.Store
}

// NewEnrichmentStore creates an EnrichmentStore over the given document cache.
func NewEnrichmentStore(store cache.Store) *EnrichmentStore {
	return &EnrichmentStore{store: store}
}

// Load returns all enrichment entries keyed by track id.
func (s *EnrichmentStore) Load() (map[string][]models.Enrichment, error) {
	entries := map[string][]models.Enrichment{}
	if err := s.store.Get(DocEnrichments, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save replaces the enrichment document.
func (s *EnrichmentStore) Save(entries map[string][]models.Enrichment) error {
	return s.store.Put(DocEnrichments, entries)
}

// ClassificationStore persists derived labels keyed by track id.
type ClassificationStore struct {
	store cache.Store
}

// NewClassificationStore creates a ClassificationStore over the given
// document cache.
func NewClassificationStore(store cache.Store) *ClassificationStore {
	return &ClassificationStore{store: store}
}

// Load returns cached classifications keyed by track id.
func (s *ClassificationStore) Load() (map[string]models.Classification, error) {
	result := map[string]models.Classification{}
	if err := s.store.Get(DocClassifications, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Save replaces the classification document.
func (s *ClassificationStore) Save(classifications map[string]models.Classification) error {
	return s.store.Put(DocClassifications, classifications)
}

// Clear removes every cached classification. Used only by an explicit full
// refresh; nothing clears this cache implicitly.
func (s *ClassificationStore) Clear() error {
	return s.store.Put(DocClassifications, map[string]models.Classification{})
}
