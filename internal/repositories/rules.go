package repositories

import (
	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// RuleStore persists playlist rule sets as an ordered list.
//
// Rule set identity is the ID field: Upsert replaces an existing set in
// place, preserving list order, and appends unknown IDs.
type RuleStore struct {
	store cache.Store
}

// NewRuleStore creates a RuleStore over the given document cache.
func NewRuleStore(store cache.Store) *RuleStore {
	return &RuleStore{store: store}
}

// Load returns all persisted rule sets. Entries without an ID are skipped
// rather than failing the whole load.
func (s *RuleStore) Load() ([]models.RuleSet, error) {
	var raw []models.RuleSet
	if err := s.store.Get(DocRules, &raw); err != nil {
		return nil, err
	}

	sets := make([]models.RuleSet, 0, len(raw))
	for _, set := range raw {
		if set.ID == "" {
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Save replaces the full rule set list.
func (s *RuleStore) Save(sets []models.RuleSet) error {
	return s.store.Put(DocRules, sets)
}

// Upsert inserts or replaces a rule set by ID and persists the result.
func (s *RuleStore) Upsert(set models.RuleSet) error {
	sets, err := s.Load()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range sets {
		if existing.ID == set.ID {
			sets[i] = set
			replaced = true
			break
		}
	}
	if !replaced {
		sets = append(sets, set)
	}

	return s.Save(sets)
}

// Delete removes the rule set with the given ID. Deleting an unknown ID is
// a no-op.
func (s *RuleStore) Delete(id string) error {
	sets, err := s.Load()
	if err != nil {
		return err
	}

	kept := sets[:0]
	for _, set := range sets {
		if set.ID != id {
			kept = append(kept, set)
		}
	}

	return s.Save(kept)
}
