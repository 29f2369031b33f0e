package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	tu "github.com/me-odo/spotify-auto-playlists/internal/testing"
)

func TestPreviewDiffs(t *testing.T) {
	svc := &tu.MockService{
		Playlists:      []models.Playlist{{ID: "p1", Name: "Auto – All"}},
		PlaylistTracks: map[string][]string{"p1": {"a", "a", "b"}},
	}
	engine := newTestEngine(t, svc, nil)

	targets := NewTargets()
	targets.Add("Auto – All", []string{"a", "b", "c"})

	diffs, err := engine.PreviewDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("PreviewDiffs failed: %v", err)
	}
	if len(diffs) != 1 {
		t.Fatalf("Expected 1 diff, got %d", len(diffs))
	}

	diff := diffs[0]
	if diff.PlaylistID != "p1" {
		t.Errorf("Expected playlist matched by name, got %q", diff.PlaylistID)
	}
	if len(diff.Duplicates) != 1 || diff.Duplicates[0] != "a" {
		t.Errorf("Expected duplicates [a], got %v", diff.Duplicates)
	}
	if len(diff.NewToAdd) != 1 || diff.NewToAdd[0] != "c" {
		t.Errorf("Expected new_to_add [c], got %v", diff.NewToAdd)
	}
	if !diff.HasChanges() {
		t.Error("Expected diff to report changes")
	}
}

// Tracks present remotely but absent from the target are left alone: the
// sync only adds and deduplicates.
func TestPreviewDiffs_Additive(t *testing.T) {
	svc := &tu.MockService{
		Playlists:      []models.Playlist{{ID: "p1", Name: "Auto – All"}},
		PlaylistTracks: map[string][]string{"p1": {"a", "manual"}},
	}
	engine := newTestEngine(t, svc, nil)

	targets := NewTargets()
	targets.Add("Auto – All", []string{"a"})

	diffs, err := engine.PreviewDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("PreviewDiffs failed: %v", err)
	}
	if diffs[0].HasChanges() {
		t.Errorf("Expected no changes for a superset playlist, got %+v", diffs[0])
	}
}

func TestPreviewDiffs_MissingPlaylist(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)

	targets := NewTargets()
	targets.Add("Auto – Mood – Chill", []string{"a"})

	diffs, err := engine.PreviewDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("PreviewDiffs failed: %v", err)
	}
	if diffs[0].PlaylistID != "" {
		t.Errorf("Expected no playlist id for a missing playlist, got %q", diffs[0].PlaylistID)
	}
	if len(diffs[0].NewToAdd) != 1 {
		t.Errorf("Expected whole target as new, got %v", diffs[0].NewToAdd)
	}
}

func TestPreviewDiffs_EmptyTargets(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)

	if _, err := engine.PreviewDiffs(context.Background(), nil, NewTargets()); !errors.Is(err, shared.ErrCacheEmpty) {
		t.Fatalf("Expected ErrCacheEmpty, got %v", err)
	}
}

// The canonical reconciliation scenario: remote [a a b], target [a b c].
// Apply must end with the playlist holding each of a, b, c exactly once.
func TestApplyDiffs_DeduplicatesAndAdds(t *testing.T) {
	svc := &tu.MockService{
		Playlists:      []models.Playlist{{ID: "p1", Name: "Auto – All"}},
		PlaylistTracks: map[string][]string{"p1": {"a", "a", "b"}},
	}
	engine := newTestEngine(t, svc, nil)

	targets := NewTargets()
	targets.Add("Auto – All", []string{"a", "b", "c"})

	result, err := engine.ApplyDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("ApplyDiffs failed: %v", err)
	}
	if result.Created != 0 || result.PlaylistsChanged != 1 {
		t.Errorf("Expected 1 changed playlist, got %+v", result)
	}
	if result.DuplicatesRemoved != 1 || result.TracksAdded != 2 {
		t.Errorf("Expected 1 dedupe and 2 additions (a readded, c new), got %+v", result)
	}

	final := svc.PlaylistTracks["p1"]
	counts := map[string]int{}
	for _, id := range final {
		counts[id]++
	}
	for _, id := range []string{"a", "b", "c"} {
		if counts[id] != 1 {
			t.Errorf("Expected %q exactly once, playlist holds %v", id, final)
		}
	}
}

func TestApplyDiffs_CreatesMissingPlaylists(t *testing.T) {
	svc := &tu.MockService{UserID: "user-1"}
	engine := newTestEngine(t, svc, nil)

	targets := NewTargets()
	targets.Add("Auto – Mood – Chill", []string{"a", "b"})

	result, err := engine.ApplyDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("ApplyDiffs failed: %v", err)
	}
	if result.Created != 1 || result.TracksAdded != 2 {
		t.Errorf("Expected playlist created with 2 tracks, got %+v", result)
	}

	playlists, _ := svc.GetPlaylists(context.Background())
	if len(playlists) != 1 || playlists[0].Name != "Auto – Mood – Chill" || playlists[0].OwnerID != "user-1" {
		t.Errorf("Unexpected created playlist: %+v", playlists)
	}
}

// An empty target for a playlist that does not exist yet creates nothing.
func TestApplyDiffs_SkipsEmptyMissingTargets(t *testing.T) {
	svc := &tu.MockService{}
	engine := newTestEngine(t, svc, nil)

	targets := NewTargets()
	targets.Add("Auto – All", nil)

	result, err := engine.ApplyDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("ApplyDiffs failed: %v", err)
	}
	if result.Created != 0 || svc.Calls("CreatePlaylist") != 0 {
		t.Errorf("Expected no playlist creation, got %+v", result)
	}
}

func TestApplyDiffs_Idempotent(t *testing.T) {
	svc := &tu.MockService{UserID: "user-1"}
	engine := newTestEngine(t, svc, nil)

	targets := NewTargets()
	targets.Add("Auto – All", []string{"a", "b"})

	if _, err := engine.ApplyDiffs(context.Background(), nil, targets); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	second, err := engine.ApplyDiffs(context.Background(), nil, targets)
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if second.PlaylistsChanged != 0 || second.TracksAdded != 0 {
		t.Errorf("Expected second apply to be a no-op, got %+v", second)
	}
}

func TestDuplicateIDs(t *testing.T) {
	got := duplicateIDs([]string{"a", "b", "a", "c", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b] in first-occurrence order, got %v", got)
	}
	if duplicateIDs(nil) != nil {
		t.Error("Expected nil for empty input")
	}
}

func TestMissingIDs(t *testing.T) {
	got := missingIDs([]string{"a", "b", "c"}, []string{"b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Expected [a c] in target order, got %v", got)
	}
}
