// package tasks implements the auto-playlist pipeline stages.
//
// The core abstraction is PipelineEngine, which orchestrates the six stages:
// fetch, enrich, classify, build, diff, and apply. Each stage reads its input
// from the document cache, so stages can run independently across process
// restarts as long as their predecessors ran first. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/repositories"
	"github.com/me-odo/spotify-auto-playlists/internal/services"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// Targets holds computed playlist memberships in first-seen name order.
//
// Map iteration order is useless for anything user-facing, so names are
// tracked separately and every consumer iterates Names.
type Targets struct {
	Names []string            // Playlist names in creation order
	Sets  map[string][]string // Name → ordered track ids
}

// NewTargets creates an empty target collection.
func NewTargets() *Targets {
	return &Targets{Sets: map[string][]string{}}
}

// Add unions trackIDs into the membership for name, preserving first-seen
// order for both names and ids. Ids already present are not re-added, so a
// mood playlist and a rule set sharing a name contribute to one target.
func (t *Targets) Add(name string, trackIDs []string) {
	existing, exists := t.Sets[name]
	if !exists {
		t.Names = append(t.Names, name)
	}
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range trackIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		existing = append(existing, id)
	}
	t.Sets[name] = existing
}

// Merge folds other into t, unioning memberships for names present in both.
func (t *Targets) Merge(other *Targets) {
	if other == nil {
		return
	}
	for _, name := range other.Names {
		t.Add(name, other.Sets[name])
	}
}

// Len returns the number of target playlists.
func (t *Targets) Len() int { return len(t.Names) }

// PipelineEngine implements the pipeline stages against a remote playlist
// service, a set of feature providers, and the document cache.
type PipelineEngine struct {
	service         services.Service
	providers       *services.ProviderRegistry
	tracks          *repositories.TrackStore
	enrichments     *repositories.EnrichmentStore
	classifications *repositories.ClassificationStore
	rules           *repositories.RuleStore
	logger          *log.Logger
}

// EngineOpts bundles the collaborators a PipelineEngine needs.
type EngineOpts struct {
	Service         services.Service
	Providers       *services.ProviderRegistry
	Tracks          *repositories.TrackStore
	Enrichments     *repositories.EnrichmentStore
	Classifications *repositories.ClassificationStore
	Rules           *repositories.RuleStore
	Logger          *log.Logger
}

// NewPipelineEngine creates a PipelineEngine with the provided collaborators.
func NewPipelineEngine(opts EngineOpts) *PipelineEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PipelineEngine{
		service:         opts.Service,
		providers:       opts.Providers,
		tracks:          opts.Tracks,
		enrichments:     opts.Enrichments,
		classifications: opts.Classifications,
		rules:           opts.Rules,
		logger:          logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// PipelineResult aggregates the outputs of a full pipeline run.
type PipelineResult struct {
	Fetch    *FetchResult
	Enrich   *EnrichResult
	Classify *ClassifyResult
	Targets  *Targets
	Diffs    []models.PlaylistDiff
	Apply    *ApplyResult
}

// RunPipeline executes every stage in order against live data. When apply is
// false the run stops after diff, leaving the remote library untouched.
func (e *PipelineEngine) RunPipeline(ctx context.Context, progress chan<- ProgressUpdate, apply bool) (*PipelineResult, error) {
	result := &PipelineResult{}

	fetch, err := e.FetchTracks(ctx, progress, FetchOpts{ForceRefresh: true})
	if err != nil {
		return nil, fmt.Errorf("fetch stage: %w", err)
	}
	result.Fetch = fetch

	enrich, err := e.EnrichTracks(ctx, progress, EnrichOpts{})
	if err != nil {
		return nil, fmt.Errorf("enrich stage: %w", err)
	}
	result.Enrich = enrich

	classify, err := e.ClassifyTracks(ctx, progress, ClassifyOpts{})
	if err != nil {
		return nil, fmt.Errorf("classify stage: %w", err)
	}
	result.Classify = classify

	targets, err := e.BuildAllTargets(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("build stage: %w", err)
	}
	result.Targets = targets

	if apply {
		applied, err := e.ApplyDiffs(ctx, progress, targets)
		if err != nil {
			return result, fmt.Errorf("apply stage: %w", err)
		}
		result.Diffs = applied.Diffs
		result.Apply = applied
		return result, nil
	}

	diffs, err := e.PreviewDiffs(ctx, progress, targets)
	if err != nil {
		return result, fmt.Errorf("diff stage: %w", err)
	}
	result.Diffs = diffs
	return result, nil
}

// CachedLibrary returns the fetched tracks and their enrichment entries for
// read-only consumers such as rule previews.
func (e *PipelineEngine) CachedLibrary() ([]models.Track, map[string][]models.Enrichment, error) {
	tracks, err := e.loadTracks()
	if err != nil {
		return nil, nil, err
	}
	entries, err := e.loadEnrichments()
	if err != nil {
		return nil, nil, err
	}
	return tracks, entries, nil
}

// loadTracks reads the fetched library, failing when the fetch stage has not
// run yet.
func (e *PipelineEngine) loadTracks() ([]models.Track, error) {
	tracks, err := e.tracks.Load()
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no fetched tracks found. Run the fetch step first", shared.ErrCacheEmpty)
	}
	return tracks, nil
}

// loadEnrichments reads the enrichment cache, failing when the enrich stage
// has not run yet.
func (e *PipelineEngine) loadEnrichments() (map[string][]models.Enrichment, error) {
	entries, err := e.enrichments.Load()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no enrichment data found. Run the enrich step first", shared.ErrCacheEmpty)
	}
	return entries, nil
}

// loadClassifications reads the classification cache, failing when the
// classify stage has not run yet.
func (e *PipelineEngine) loadClassifications() (map[string]models.Classification, error) {
	classifications, err := e.classifications.Load()
	if err != nil {
		return nil, err
	}
	if len(classifications) == 0 {
		return nil, fmt.Errorf("%w: no classifications found. Run the classify step first", shared.ErrCacheEmpty)
	}
	return classifications, nil
}
