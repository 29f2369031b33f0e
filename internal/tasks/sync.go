package tasks

import (
	"context"
	"fmt"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// ApplyResult contains the outcome of an apply stage run.
type ApplyResult struct {
	Diffs             []models.PlaylistDiff // Per-playlist diffs as applied
	Created           int                   // Playlists created
	PlaylistsChanged  int                   // Playlists that received changes
	TracksAdded       int                   // Track additions performed
	DuplicatesRemoved int                   // Duplicate ids removed
}

// PreviewDiffs compares every target membership against the corresponding
// remote playlist, matched by name, without writing anything.
//
// A target with no remote counterpart diffs against an empty playlist. The
// sync model is additive: ids present remotely but absent from the target are
// never scheduled for removal, only duplicate occurrences are.
func (e *PipelineEngine) PreviewDiffs(ctx context.Context, progress chan<- ProgressUpdate, targets *Targets) ([]models.PlaylistDiff, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if targets == nil || targets.Len() == 0 {
		return nil, fmt.Errorf("%w: no playlist targets found. Run the build step first", shared.ErrCacheEmpty)
	}

	playlists, err := e.service.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	byName := map[string]models.Playlist{}
	for _, pl := range playlists {
		if _, exists := byName[pl.Name]; !exists {
			byName[pl.Name] = pl
		}
	}

	diffs := make([]models.PlaylistDiff, 0, targets.Len())
	for i, name := range targets.Names {
		e.sendProgress(progress, diffPlaylistUpdate(i+1, targets.Len(), name))

		diff := models.PlaylistDiff{Name: name, TargetIDs: targets.Sets[name]}
		if pl, exists := byName[name]; exists {
			diff.PlaylistID = pl.ID
			existing, err := e.service.PlaylistTrackIDs(ctx, pl.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to read playlist '%s': %w", name, err)
			}
			diff.ExistingIDs = existing
		}

		diff.Duplicates = duplicateIDs(diff.ExistingIDs)
		diff.NewToAdd = missingIDs(diff.TargetIDs, diff.ExistingIDs)
		diffs = append(diffs, diff)
	}
	return diffs, nil
}

// ApplyDiffs reconciles every target playlist against the remote library.
//
// Missing playlists are created as private, duplicate occurrences are
// removed, and target tracks not yet present are appended. A duplicated id
// that belongs to the target is added back once after its removal.
func (e *PipelineEngine) ApplyDiffs(ctx context.Context, progress chan<- ProgressUpdate, targets *Targets) (*ApplyResult, error) {
	diffs, err := e.PreviewDiffs(ctx, progress, targets)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{Diffs: diffs}
	userID := ""

	for i := range diffs {
		diff := &diffs[i]
		if !diff.HasChanges() {
			continue
		}

		e.sendProgress(progress, applyPlaylistUpdate(i+1, len(diffs), diff.Name))

		if diff.PlaylistID == "" {
			if userID == "" {
				userID, err = e.service.CurrentUserID(ctx)
				if err != nil {
					return result, fmt.Errorf("failed to resolve user: %w", err)
				}
			}
			created, err := e.service.CreatePlaylist(ctx, userID, diff.Name)
			if err != nil {
				return result, fmt.Errorf("failed to create playlist '%s': %w", diff.Name, err)
			}
			diff.PlaylistID = created.ID
			result.Created++
			e.logger.Info("created playlist", "name", diff.Name, "id", created.ID)
		}

		if len(diff.Duplicates) > 0 {
			if err := e.service.RemoveTracks(ctx, diff.PlaylistID, diff.Duplicates); err != nil {
				return result, fmt.Errorf("failed to remove duplicates from '%s': %w", diff.Name, err)
			}
			result.DuplicatesRemoved += len(diff.Duplicates)
		}

		toAdd := applyAdditions(diff)
		if len(toAdd) > 0 {
			if err := e.service.AddTracks(ctx, diff.PlaylistID, toAdd); err != nil {
				return result, fmt.Errorf("failed to add tracks to '%s': %w", diff.Name, err)
			}
			result.TracksAdded += len(toAdd)
		}

		result.PlaylistsChanged++
	}

	e.logger.Info("sync applied",
		"playlists", result.PlaylistsChanged,
		"created", result.Created,
		"added", result.TracksAdded,
		"deduped", result.DuplicatesRemoved)

	return result, nil
}

// duplicateIDs returns the ids occurring more than once, ordered by first
// occurrence.
func duplicateIDs(ids []string) []string {
	counts := map[string]int{}
	for _, id := range ids {
		counts[id]++
	}

	var dups []string
	reported := map[string]bool{}
	for _, id := range ids {
		if counts[id] > 1 && !reported[id] {
			reported[id] = true
			dups = append(dups, id)
		}
	}
	return dups
}

// missingIDs returns the target ids absent from existing, in target order.
func missingIDs(target, existing []string) []string {
	present := map[string]bool{}
	for _, id := range existing {
		present[id] = true
	}

	var missing []string
	for _, id := range target {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// applyAdditions returns the ids to append after duplicate removal: the new
// ids plus any removed duplicate that belongs to the target, in target order.
func applyAdditions(diff *models.PlaylistDiff) []string {
	add := map[string]bool{}
	for _, id := range diff.NewToAdd {
		add[id] = true
	}

	inTarget := map[string]bool{}
	for _, id := range diff.TargetIDs {
		inTarget[id] = true
	}
	for _, id := range diff.Duplicates {
		if inTarget[id] {
			add[id] = true
		}
	}

	var ordered []string
	for _, id := range diff.TargetIDs {
		if add[id] {
			ordered = append(ordered, id)
			delete(add, id)
		}
	}
	return ordered
}
