package models

// PlaylistDiff describes how one remote playlist differs from its computed
// target. Diffs are always recomputed from live remote state; they are never
// persisted beyond a transient preview.
type PlaylistDiff struct {
	Name        string   `json:"name"`
	PlaylistID  string   `json:"playlist_id,omitempty"` // empty until the playlist exists remotely
	ExistingIDs []string `json:"existing_ids"`
	TargetIDs   []string `json:"target_ids"`
	Duplicates  []string `json:"duplicates"`
	NewToAdd    []string `json:"new_to_add"`
}

// HasChanges reports whether applying this diff would touch the remote
// playlist.
func (d PlaylistDiff) HasChanges() bool {
	return len(d.Duplicates) > 0 || len(d.NewToAdd) > 0
}
