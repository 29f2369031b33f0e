package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/rules"
)

// ClassifyOpts contains configuration for the classify stage.
type ClassifyOpts struct {
	RefreshExisting bool // Recompute labels for already classified tracks
}

// ClassifyResult contains the outcome of a classify stage run.
type ClassifyResult struct {
	Classifications map[string]models.Classification // Track id → labels
	MoodCounts      map[string]int                   // Mood → track count
	Computed        int                              // Tracks classified this run
	FromCache       int                              // Tracks reusing cached labels
}

// Mood signal thresholds, applied in order. The first matching check wins, so
// a track that is both danceable and aggressive lands in "intense".
const (
	partyThreshold      = 0.65
	partyDanceThreshold = 0.60
	aggressiveThreshold = 0.60
	danceThreshold      = 0.70
	relaxedThreshold    = 0.65
	happyThreshold      = 0.60
)

// ClassifyTracks derives mood, genre, and year labels for every fetched track
// from its flattened enrichment view and persists the classification
// document.
//
// The stage is idempotent: tracks already present in the classification cache
// keep their labels unless RefreshExisting is set, and tracks without usable
// enrichment data are recorded as unclassified rather than skipped.
func (e *PipelineEngine) ClassifyTracks(ctx context.Context, progress chan<- ProgressUpdate, opts ClassifyOpts) (*ClassifyResult, error) {
	tracks, err := e.loadTracks()
	if err != nil {
		return nil, err
	}
	entries, err := e.loadEnrichments()
	if err != nil {
		return nil, err
	}

	classifications := map[string]models.Classification{}
	if opts.RefreshExisting {
		// Drop the cache up front so an interrupted refresh cannot leave a
		// mix of stale and recomputed labels behind.
		if err := e.classifications.Clear(); err != nil {
			return nil, err
		}
	} else {
		classifications, err = e.classifications.Load()
		if err != nil {
			return nil, err
		}
	}

	result := &ClassifyResult{MoodCounts: map[string]int{}}

	total := len(tracks)
	for i, track := range tracks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, exists := classifications[track.ID]; exists {
			result.FromCache++
		} else {
			view := map[string]any{}
			if tracked := entries[track.ID]; len(tracked) > 0 {
				view = rules.BuildView(tracked)
			}
			classifications[track.ID] = classifyView(view)
			result.Computed++
		}

		result.MoodCounts[classifications[track.ID].Mood]++
		e.sendProgress(progress, classifyUpdate(i+1, total))
	}

	if err := e.classifications.Save(classifications); err != nil {
		return nil, fmt.Errorf("failed to persist classifications: %w", err)
	}

	result.Classifications = classifications
	e.logger.Info("classification complete",
		"computed", result.Computed,
		"cached", result.FromCache,
		"moods", len(result.MoodCounts))

	return result, nil
}

// classifyView derives labels from a flattened feature view. An empty view
// yields the unclassified sentinel so reruns skip the track.
func classifyView(view map[string]any) models.Classification {
	return models.Classification{
		Mood:  classifyMood(view),
		Genre: stringSignal(view, "genre"),
		Year:  yearSignal(view),
	}
}

// classifyMood maps mood signals to a label.
//
// A provider that reports a mood directly short-circuits the threshold
// checks; otherwise the 0..1 signals are walked in a fixed order so
// overlapping signals always resolve the same way.
func classifyMood(view map[string]any) string {
	if direct := stringSignal(view, "mood"); direct != "" {
		return strings.ToLower(direct)
	}

	party := floatSignal(view, "party")
	danceability := floatSignal(view, "danceability")
	aggressive := floatSignal(view, "aggressive")
	relaxed := floatSignal(view, "relaxed")
	happy := floatSignal(view, "happy")

	switch {
	case party >= partyThreshold && danceability >= partyDanceThreshold:
		return "party"
	case aggressive >= aggressiveThreshold:
		return "intense"
	case danceability >= danceThreshold:
		return "dance"
	case relaxed >= relaxedThreshold:
		return "chill"
	case happy >= happyThreshold:
		return "happy"
	default:
		return models.MoodUnclassified
	}
}

// floatSignal returns the named signal as a float, or zero when absent or
// non-numeric. JSON round-trips hand back float64 but providers may populate
// views with ints directly.
func floatSignal(view map[string]any, name string) float64 {
	switch v := view[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func stringSignal(view map[string]any, name string) string {
	if s, ok := view[name].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// yearSignal reads a year from the view, tolerating numeric and string
// encodings.
func yearSignal(view map[string]any) int {
	switch v := view["year"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if year, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return year
		}
	}
	return 0
}
