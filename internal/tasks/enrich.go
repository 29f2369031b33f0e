package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/rules"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// enrichWorkers is the size of the enrichment worker pool. The pool is fixed
// so a caller cannot amplify load on the feature providers.
const enrichWorkers = 10

// EnrichOpts contains configuration for the enrich stage.
type EnrichOpts struct {
	ForceRefresh bool    // Discard cached entries and re-resolve everything
	RateLimit    float64 // Provider requests per second (default: 5)
}

// EnrichResult contains the outcome of an enrich stage run.
type EnrichResult struct {
	Features  map[string]map[string]any // Track id → flattened feature view
	Unmatched []string                  // Track ids no provider could resolve
	Resolved  int                       // Tracks resolved during this run
	FromCache int                       // Tracks skipped due to cached entries
}

type enrichJob struct {
	track models.Track
}

type enrichResult struct {
	trackID string
	entries []models.Enrichment
	err     error
}

// EnrichTracks resolves external feature data for every fetched track that
// has no cached enrichment yet.
//
// Resolution runs on a worker pool so a library of thousands of tracks does
// not serialize on provider round-trips. Workers are strictly read-only; the
// coordinator loop below is the only goroutine that touches the entries map
// and the cache, and it persists after every resolved track so an interrupted
// run loses at most the in-flight lookups.
func (e *PipelineEngine) EnrichTracks(ctx context.Context, progress chan<- ProgressUpdate, opts EnrichOpts) (*EnrichResult, error) {
	tracks, err := e.loadTracks()
	if err != nil {
		return nil, err
	}
	if e.providers == nil || len(e.providers.List()) == 0 {
		return nil, fmt.Errorf("%w: no feature providers registered", shared.ErrServiceUnavailable)
	}

	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	entries := map[string][]models.Enrichment{}
	if !opts.ForceRefresh {
		entries, err = e.enrichments.Load()
		if err != nil {
			return nil, err
		}
	}

	pending := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if len(entries[track.ID]) == 0 {
			pending = append(pending, track)
		}
	}

	result := &EnrichResult{FromCache: len(tracks) - len(pending)}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan enrichJob, len(pending))
	results := make(chan enrichResult, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < enrichWorkers; i++ {
		wg.Add(1)
		go e.enrichWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, track := range pending {
		jobs <- enrichJob{track: track}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	total := len(pending)
	done := 0
	for res := range results {
		done++
		e.sendProgress(progress, enrichTrackUpdate(done, total, res.trackID))

		if res.err != nil {
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				return nil, res.err
			}
			e.logger.Debug("enrichment lookup failed", "track", res.trackID, "error", res.err)
		}

		if len(res.entries) == 0 {
			result.Unmatched = append(result.Unmatched, res.trackID)
			continue
		}

		entries[res.trackID] = res.entries
		result.Resolved++
		if err := e.enrichments.Save(entries); err != nil {
			return nil, fmt.Errorf("failed to persist enrichments: %w", err)
		}
	}

	result.Features = make(map[string]map[string]any, len(entries))
	for _, track := range tracks {
		if tracked := entries[track.ID]; len(tracked) > 0 {
			result.Features[track.ID] = rules.BuildView(tracked)
		}
	}

	e.logger.Info("enrichment complete",
		"resolved", result.Resolved,
		"cached", result.FromCache,
		"unmatched", len(result.Unmatched))

	return result, nil
}

// enrichWorker resolves queued tracks against every registered provider,
// pacing each outbound lookup through the shared limiter.
func (e *PipelineEngine) enrichWorker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan enrichJob, results chan<- enrichResult) {
	defer wg.Done()

	for job := range jobs {
		var entries []models.Enrichment
		var lastErr error

		for _, provider := range e.providers.List() {
			if err := limiter.Wait(ctx); err != nil {
				results <- enrichResult{trackID: job.track.ID, err: err}
				return
			}

			payload, err := provider.Resolve(ctx, job.track)
			if err != nil {
				if !errors.Is(err, shared.ErrNoMatch) {
					lastErr = err
				}
				continue
			}

			entries = append(entries, models.Enrichment{
				Source:     provider.ID(),
				Version:    provider.Version(),
				Timestamp:  shared.Timestamp(),
				Categories: payload,
			})
		}

		results <- enrichResult{trackID: job.track.ID, entries: entries, err: lastErr}
	}
}
