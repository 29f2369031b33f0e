package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	EnrichTracks
	ClassifyTracks
	BuildTargets
	DiffPlaylists
	ApplyChanges
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch"
	case EnrichTracks:
		return "enrich"
	case ClassifyTracks:
		return "classify"
	case BuildTargets:
		return "build"
	case DiffPlaylists:
		return "diff"
	case ApplyChanges:
		return "apply"
	default:
		return "unknown"
	}
}

func fetchLibraryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    step,
		Total:   total,
		Message: "Fetching liked tracks from Spotify...",
	}
}

func enrichTrackUpdate(step, total int, trackID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Enriching track %d/%d", step, total),
		Data:    trackID,
	}
}

func classifyUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyTracks,
		Step:    step,
		Total:   total,
		Message: "Classifying tracks...",
	}
}

func buildTargetsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildTargets,
		Step:    step,
		Total:   total,
		Message: "Building target playlists...",
	}
}

func diffPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiffPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Diffing playlist '%s'", name),
		Data:    name,
	}
}

func applyPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyChanges,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Applying changes to '%s'", name),
		Data:    name,
	}
}
