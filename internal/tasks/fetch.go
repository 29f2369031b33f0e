package tasks

import (
	"context"
	"fmt"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// FetchOpts contains configuration for the fetch stage.
type FetchOpts struct {
	ForceRefresh bool // Refetch from Spotify even when the cache has tracks
}

// FetchResult contains the outcome of a fetch stage run.
type FetchResult struct {
	Tracks    []models.Track // Full saved-track library in library order
	FromCache bool           // True when the cached snapshot was reused
}

// FetchTracks retrieves the user's saved-track library and persists it as the
// tracks document. A non-empty cache is reused unless ForceRefresh is set, so
// downstream stages can run offline once a snapshot exists.
func (e *PipelineEngine) FetchTracks(ctx context.Context, progress chan<- ProgressUpdate, opts FetchOpts) (*FetchResult, error) {
	if !opts.ForceRefresh {
		cached, err := e.tracks.Load()
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			e.logger.Debug("reusing cached track snapshot", "count", len(cached))
			return &FetchResult{Tracks: cached, FromCache: true}, nil
		}
	}

	if e.service == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchLibraryUpdate(0, 1))

	tracks, err := e.service.LikedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liked tracks: %w", err)
	}

	if err := e.tracks.Save(tracks); err != nil {
		return nil, fmt.Errorf("failed to persist tracks: %w", err)
	}

	e.sendProgress(progress, fetchLibraryUpdate(1, 1))
	e.logger.Info("fetched liked tracks", "count", len(tracks))

	return &FetchResult{Tracks: tracks}, nil
}
