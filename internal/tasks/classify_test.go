package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	tu "github.com/me-odo/spotify-auto-playlists/internal/testing"
)

func seedEnrichments(t *testing.T, engine *PipelineEngine, views map[string]map[string]any) {
	t.Helper()
	entries := map[string][]models.Enrichment{}
	for id, view := range views {
		entries[id] = []models.Enrichment{{Source: "test", Categories: view}}
	}
	if err := engine.enrichments.Save(entries); err != nil {
		t.Fatalf("Failed to seed enrichments: %v", err)
	}
}

func TestClassifyMood(t *testing.T) {
	tests := []struct {
		name string
		view map[string]any
		want string
	}{
		{"party wins over dance", map[string]any{"party": 0.7, "danceability": 0.8}, "party"},
		{"party needs danceability", map[string]any{"party": 0.9, "danceability": 0.3}, models.MoodUnclassified},
		{"aggressive beats danceable", map[string]any{"aggressive": 0.7, "danceability": 0.9}, "intense"},
		{"dance", map[string]any{"danceability": 0.75}, "dance"},
		{"chill", map[string]any{"relaxed": 0.7}, "chill"},
		{"happy", map[string]any{"happy": 0.65}, "happy"},
		{"below thresholds", map[string]any{"happy": 0.5, "relaxed": 0.5}, models.MoodUnclassified},
		{"direct mood short-circuits", map[string]any{"mood": "Melancholy", "happy": 0.9}, "melancholy"},
		{"empty view", map[string]any{}, models.MoodUnclassified},
		{"non-numeric signal ignored", map[string]any{"happy": "very"}, models.MoodUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMood(tt.view); got != tt.want {
				t.Errorf("classifyMood(%v) = %q, want %q", tt.view, got, tt.want)
			}
		})
	}
}

func TestClassifyView_GenreAndYear(t *testing.T) {
	c := classifyView(map[string]any{"relaxed": 0.8, "genre": "ambient", "year": 1998.0})
	if c.Mood != "chill" || c.Genre != "ambient" || c.Year != 1998 {
		t.Errorf("Unexpected classification: %+v", c)
	}

	c = classifyView(map[string]any{"year": "2004"})
	if c.Year != 2004 {
		t.Errorf("Expected string year parsed, got %d", c.Year)
	}
}

func TestClassifyTracks(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)
	seedTracks(t, engine,
		models.Track{ID: "t1"},
		models.Track{ID: "t2"},
		models.Track{ID: "t3"},
	)
	seedEnrichments(t, engine, map[string]map[string]any{
		"t1": {"relaxed": 0.9},
		"t2": {"aggressive": 0.7},
	})

	result, err := engine.ClassifyTracks(context.Background(), nil, ClassifyOpts{})
	if err != nil {
		t.Fatalf("ClassifyTracks failed: %v", err)
	}

	if result.Computed != 3 {
		t.Errorf("Expected 3 computed, got %d", result.Computed)
	}
	if result.Classifications["t1"].Mood != "chill" {
		t.Errorf("Expected t1 chill, got %q", result.Classifications["t1"].Mood)
	}
	if result.Classifications["t3"].Mood != models.MoodUnclassified {
		t.Errorf("Expected unenriched track marked unclassified, got %q", result.Classifications["t3"].Mood)
	}
	if result.MoodCounts["chill"] != 1 || result.MoodCounts[models.MoodUnclassified] != 1 {
		t.Errorf("Unexpected mood counts: %v", result.MoodCounts)
	}

	persisted, err := engine.classifications.Load()
	if err != nil || len(persisted) != 3 {
		t.Fatalf("Expected 3 persisted classifications, got %d (err=%v)", len(persisted), err)
	}
}

// Rerunning classify over unchanged inputs keeps cached labels and computes
// nothing new.
func TestClassifyTracks_Idempotent(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)
	seedTracks(t, engine, models.Track{ID: "t1"})
	seedEnrichments(t, engine, map[string]map[string]any{"t1": {"happy": 0.9}})

	first, err := engine.ClassifyTracks(context.Background(), nil, ClassifyOpts{})
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := engine.ClassifyTracks(context.Background(), nil, ClassifyOpts{})
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if second.Computed != 0 || second.FromCache != 1 {
		t.Errorf("Expected pure cache hit, got computed=%d cached=%d", second.Computed, second.FromCache)
	}
	if first.Classifications["t1"] != second.Classifications["t1"] {
		t.Errorf("Expected identical output across runs: %+v vs %+v",
			first.Classifications["t1"], second.Classifications["t1"])
	}
}

func TestClassifyTracks_RefreshExisting(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)
	seedTracks(t, engine, models.Track{ID: "t1"})
	seedEnrichments(t, engine, map[string]map[string]any{"t1": {"happy": 0.9}})

	// Stale label from an earlier run with different thresholds.
	if err := engine.classifications.Save(map[string]models.Classification{
		"t1": {Mood: "chill"},
	}); err != nil {
		t.Fatalf("Failed to seed classifications: %v", err)
	}

	result, err := engine.ClassifyTracks(context.Background(), nil, ClassifyOpts{RefreshExisting: true})
	if err != nil {
		t.Fatalf("ClassifyTracks failed: %v", err)
	}
	if result.Classifications["t1"].Mood != "happy" {
		t.Errorf("Expected refresh to recompute label, got %q", result.Classifications["t1"].Mood)
	}
}

// A full refresh clears the cache before recomputing, so an interrupted
// refresh cannot leave stale labels behind.
func TestClassifyTracks_RefreshClearsCacheFirst(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)
	seedTracks(t, engine, models.Track{ID: "t1"})
	seedEnrichments(t, engine, map[string]map[string]any{"t1": {"happy": 0.9}})

	if err := engine.classifications.Save(map[string]models.Classification{
		"t1": {Mood: "chill"},
	}); err != nil {
		t.Fatalf("Failed to seed classifications: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.ClassifyTracks(ctx, nil, ClassifyOpts{RefreshExisting: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	cached, err := engine.classifications.Load()
	if err != nil {
		t.Fatalf("Failed to load classifications: %v", err)
	}
	if len(cached) != 0 {
		t.Errorf("Expected empty cache after aborted refresh, got %v", cached)
	}
}

func TestClassifyTracks_Preconditions(t *testing.T) {
	engine := newTestEngine(t, &tu.MockService{}, nil)

	if _, err := engine.ClassifyTracks(context.Background(), nil, ClassifyOpts{}); !errors.Is(err, shared.ErrCacheEmpty) {
		t.Fatalf("Expected ErrCacheEmpty without tracks, got %v", err)
	}

	seedTracks(t, engine, models.Track{ID: "t1"})
	if _, err := engine.ClassifyTracks(context.Background(), nil, ClassifyOpts{}); !errors.Is(err, shared.ErrCacheEmpty) {
		t.Fatalf("Expected ErrCacheEmpty without enrichments, got %v", err)
	}
}
