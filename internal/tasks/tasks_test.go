package tasks

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/repositories"
	"github.com/me-odo/spotify-auto-playlists/internal/services"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	tu "github.com/me-odo/spotify-auto-playlists/internal/testing"
)

// newTestEngine builds an engine over a throwaway file cache.
func newTestEngine(t *testing.T, svc services.Service, registry *services.ProviderRegistry) *PipelineEngine {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	store := cache.NewFileStore(t.TempDir(), logger)
	return NewPipelineEngine(EngineOpts{
		Service:         svc,
		Providers:       registry,
		Tracks:          repositories.NewTrackStore(store),
		Enrichments:     repositories.NewEnrichmentStore(store),
		Classifications: repositories.NewClassificationStore(store),
		Rules:           repositories.NewRuleStore(store),
		Logger:          logger,
	})
}

func TestTargets_Order(t *testing.T) {
	targets := NewTargets()
	targets.Add("b", []string{"1"})
	targets.Add("a", []string{"2"})
	targets.Add("b", []string{"3", "1"})

	if len(targets.Names) != 2 {
		t.Fatalf("Expected 2 names, got %d", len(targets.Names))
	}
	if targets.Names[0] != "b" || targets.Names[1] != "a" {
		t.Errorf("Expected first-seen order [b a], got %v", targets.Names)
	}
	if got := targets.Sets["b"]; len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Errorf("Expected re-add to union without duplicates, got %v", got)
	}
}

func TestTargets_Merge(t *testing.T) {
	base := NewTargets()
	base.Add("Auto – All", []string{"t1", "t2"})
	base.Add("Auto – Mood – Chill", []string{"t1"})

	other := NewTargets()
	other.Add("Workout", []string{"t2"})
	other.Add("Auto – Mood – Chill", []string{"t2", "t1"})

	base.Merge(other)

	if base.Len() != 3 {
		t.Fatalf("Expected 3 targets after merge, got %d", base.Len())
	}
	if base.Names[2] != "Workout" {
		t.Errorf("Expected new names appended, got %v", base.Names)
	}
	if got := base.Sets["Auto – Mood – Chill"]; len(got) != 2 || got[0] != "t1" || got[1] != "t2" {
		t.Errorf("Expected merge to union shared names in first-seen order, got %v", got)
	}
}

func TestTargets_MergeSameName(t *testing.T) {
	base := NewTargets()
	base.Add("Auto – Mood – Chill", []string{"a"})

	other := NewTargets()
	other.Add("Auto – Mood – Chill", []string{"b"})

	base.Merge(other)

	if got := base.Sets["Auto – Mood – Chill"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
}

func TestFetchTracks(t *testing.T) {
	svc := &tu.MockService{Liked: []models.Track{
		{ID: "t1", Title: "Song One", Artist: "Artist A"},
		{ID: "t2", Title: "Song Two", Artist: "Artist B"},
	}}
	engine := newTestEngine(t, svc, nil)

	result, err := engine.FetchTracks(context.Background(), nil, FetchOpts{})
	if err != nil {
		t.Fatalf("FetchTracks failed: %v", err)
	}
	if len(result.Tracks) != 2 || result.FromCache {
		t.Errorf("Expected 2 fresh tracks, got %d (cached=%v)", len(result.Tracks), result.FromCache)
	}

	cached, err := engine.tracks.Load()
	if err != nil || len(cached) != 2 {
		t.Fatalf("Expected persisted snapshot, got %d tracks (err=%v)", len(cached), err)
	}
}

func TestFetchTracks_CacheReuse(t *testing.T) {
	svc := &tu.MockService{Liked: []models.Track{{ID: "t1", Title: "Song One"}}}
	engine := newTestEngine(t, svc, nil)

	if _, err := engine.FetchTracks(context.Background(), nil, FetchOpts{}); err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}

	result, err := engine.FetchTracks(context.Background(), nil, FetchOpts{})
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if !result.FromCache {
		t.Error("Expected second fetch to reuse the cached snapshot")
	}
	if got := svc.Calls("LikedTracks"); got != 1 {
		t.Errorf("Expected 1 remote call, got %d", got)
	}

	refreshed, err := engine.FetchTracks(context.Background(), nil, FetchOpts{ForceRefresh: true})
	if err != nil {
		t.Fatalf("Forced fetch failed: %v", err)
	}
	if refreshed.FromCache {
		t.Error("Expected ForceRefresh to bypass the cache")
	}
	if got := svc.Calls("LikedTracks"); got != 2 {
		t.Errorf("Expected 2 remote calls after refresh, got %d", got)
	}
}

func TestFetchTracks_ServiceError(t *testing.T) {
	svc := &tu.MockService{Err: errors.New("boom")}
	engine := newTestEngine(t, svc, nil)

	if _, err := engine.FetchTracks(context.Background(), nil, FetchOpts{}); err == nil {
		t.Fatal("Expected error from failing service")
	}
}

func TestRunPipeline_EndToEnd(t *testing.T) {
	svc := &tu.MockService{Liked: []models.Track{
		{ID: "t1", Title: "Quiet Song", Artist: "Artist A"},
		{ID: "t2", Title: "Loud Song", Artist: "Artist B"},
	}}
	provider := &tu.MockProvider{
		ProviderID: "acousticbrainz",
		Payloads: map[string]map[string]any{
			"t1": {"relaxed": 0.9},
			"t2": {"aggressive": 0.8},
		},
	}
	engine := newTestEngine(t, svc, services.NewProviderRegistry(provider))

	result, err := engine.RunPipeline(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}

	if result.Classify.Classifications["t1"].Mood != "chill" {
		t.Errorf("Expected t1 chill, got %q", result.Classify.Classifications["t1"].Mood)
	}
	if result.Classify.Classifications["t2"].Mood != "intense" {
		t.Errorf("Expected t2 intense, got %q", result.Classify.Classifications["t2"].Mood)
	}

	wantNames := []string{"Auto – All", "Auto – Mood – Chill", "Auto – Mood – Intense"}
	if len(result.Targets.Names) != len(wantNames) {
		t.Fatalf("Expected %d targets, got %v", len(wantNames), result.Targets.Names)
	}
	for i, name := range wantNames {
		if result.Targets.Names[i] != name {
			t.Errorf("Expected target %d to be %q, got %q", i, name, result.Targets.Names[i])
		}
	}

	if result.Apply == nil || result.Apply.Created != 3 {
		t.Fatalf("Expected 3 playlists created, got %+v", result.Apply)
	}

	playlists, _ := svc.GetPlaylists(context.Background())
	byName := map[string][]string{}
	for _, pl := range playlists {
		ids, _ := svc.PlaylistTrackIDs(context.Background(), pl.ID)
		byName[pl.Name] = ids
	}
	if got := byName["Auto – All"]; len(got) != 2 || got[0] != "t1" || got[1] != "t2" {
		t.Errorf("Expected Auto – All to hold [t1 t2], got %v", got)
	}
	if got := byName["Auto – Mood – Chill"]; len(got) != 1 || got[0] != "t1" {
		t.Errorf("Expected chill playlist to hold [t1], got %v", got)
	}
}

func TestRunPipeline_DiffOnly(t *testing.T) {
	svc := &tu.MockService{Liked: []models.Track{{ID: "t1", Title: "Song"}}}
	provider := &tu.MockProvider{Payloads: map[string]map[string]any{
		"t1": {"happy": 0.9},
	}}
	engine := newTestEngine(t, svc, services.NewProviderRegistry(provider))

	result, err := engine.RunPipeline(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}
	if result.Apply != nil {
		t.Error("Expected no apply result in preview mode")
	}
	if svc.Calls("CreatePlaylist") != 0 || svc.Calls("AddTracks") != 0 {
		t.Error("Expected preview run to leave the remote library untouched")
	}
	if len(result.Diffs) != 2 {
		t.Fatalf("Expected diffs for 2 targets, got %d", len(result.Diffs))
	}
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)

	progress := make(chan ProgressUpdate, 1)
	engine.sendProgress(progress, fetchLibraryUpdate(1, 1))
	engine.sendProgress(progress, fetchLibraryUpdate(1, 1)) // channel full, must not block

	if len(progress) != 1 {
		t.Errorf("Expected exactly 1 buffered update, got %d", len(progress))
	}
	engine.sendProgress(nil, fetchLibraryUpdate(1, 1)) // nil channel, must not panic
}
