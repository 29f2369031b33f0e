// package models defines the data model for the auto-playlists pipeline
package models

import "strings"

// Track represents a saved library track fetched from Spotify.
//
// Tracks are created during the fetch stage, persisted verbatim in the tracks
// cache, and never mutated within a pipeline run.
type Track struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Artist      string         `json:"artist"`
	Album       string         `json:"album"`
	ReleaseDate string         `json:"release_date,omitempty"`
	AddedAt     string         `json:"added_at,omitempty"`
	Features    map[string]any `json:"features,omitempty"`
}

// MainArtist returns the first artist of a comma-separated artist string.
func (t Track) MainArtist() string {
	if t.Artist == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(t.Artist, ",")[0])
}

// Playlist represents a remote Spotify playlist.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Enrichment is one versioned feature payload attached to a track by an
// external provider. A track may carry several entries; the flattened view is
// built by folding entries in list order, later entries overwriting earlier
// keys (see rules.BuildView).
type Enrichment struct {
	Source     string         `json:"source"`
	Version    string         `json:"version,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Categories map[string]any `json:"categories"`
}

// MoodUnclassified is the sentinel mood assigned to tracks with no usable
// enrichment data. It marks the track as processed so the classify stage
// stays idempotent.
const MoodUnclassified = "unclassified"

// Classification holds the derived labels for a single track.
type Classification struct {
	Mood  string `json:"mood"`
	Genre string `json:"genre,omitempty"`
	Year  int    `json:"year,omitempty"`
}
