package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/formatter"
	"github.com/me-odo/spotify-auto-playlists/internal/tasks"
)

// drainProgress logs stage progress updates until the channel closes.
func (r *Runner) drainProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}

// Fetch retrieves the liked-track library into the cache.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	result, err := r.engine.FetchTracks(ctx, nil, tasks.FetchOpts{ForceRefresh: cmd.Bool("force")})
	if err != nil {
		return err
	}

	if result.FromCache {
		r.writePlain("✓ Using cached snapshot: %d tracks (use --force to refetch)\n", len(result.Tracks))
	} else {
		r.writePlain("✓ Fetched %d liked tracks\n", len(result.Tracks))
	}
	return nil
}

// Enrich resolves feature data for fetched tracks.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	progress, stop := r.drainProgress()

	result, err := r.engine.EnrichTracks(ctx, progress, tasks.EnrichOpts{
		ForceRefresh: cmd.Bool("force"),
		RateLimit:    cmd.Float("rate"),
	})
	stop()
	if err != nil {
		return err
	}

	r.writePlain("✓ Enrichment complete\n")
	r.writePlain("  Resolved: %d\n", result.Resolved)
	r.writePlain("  Cached:   %d\n", result.FromCache)
	r.writePlain("  Unmatched: %d\n", len(result.Unmatched))
	return nil
}

// Classify derives mood labels from enrichment data.
func (r *Runner) Classify(ctx context.Context, cmd *cli.Command) error {
	result, err := r.engine.ClassifyTracks(ctx, nil, tasks.ClassifyOpts{
		RefreshExisting: cmd.Bool("refresh"),
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Classified %d tracks (%d new, %d cached)\n\n",
		result.Computed+result.FromCache, result.Computed, result.FromCache)
	return r.writePlain("%s", formatter.MoodSummaryToText(result.MoodCounts))
}

// Build computes target playlist memberships.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	targets, err := r.engine.BuildAllTargets(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(targets, true)
	}

	r.writePlain("✓ Built %d target playlists:\n\n", targets.Len())
	for _, name := range targets.Names {
		r.writePlain("  %-30s %d tracks\n", name, len(targets.Sets[name]))
	}
	return nil
}

// Diff previews playlist changes without applying them.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	targets, err := r.engine.BuildAllTargets(ctx, nil)
	if err != nil {
		return err
	}
	diffs, err := r.engine.PreviewDiffs(ctx, nil, targets)
	if err != nil {
		return err
	}

	if outputPath := cmd.String("output"); outputPath != "" || cmd.Bool("save") {
		path, err := formatter.WriteDiffReport(diffs, outputPath)
		if err != nil {
			return err
		}
		r.writePlain("✓ Diff report written to %s\n", path)
		return nil
	}

	if cmd.Bool("json") {
		data, err := formatter.DiffToJSON(diffs)
		if err != nil {
			return err
		}
		r.writePlain("%s\n", data)
		return nil
	}

	return r.writePlain("%s", formatter.DiffToText(diffs))
}

// Apply reconciles the remote playlists with the computed targets.
func (r *Runner) Apply(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	targets, err := r.engine.BuildAllTargets(ctx, nil)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		diffs, err := r.engine.PreviewDiffs(ctx, nil, targets)
		if err != nil {
			return err
		}
		r.writePlain("%s\n", formatter.DiffToText(diffs))
		if !r.confirm("Apply these changes?") {
			r.writePlain("Aborted.\n")
			return nil
		}
	}

	result, err := r.engine.ApplyDiffs(ctx, nil, targets)
	if err != nil {
		return err
	}

	r.writePlain("✓ Sync applied\n")
	r.writePlain("  Playlists changed: %d\n", result.PlaylistsChanged)
	r.writePlain("  Created:           %d\n", result.Created)
	r.writePlain("  Tracks added:      %d\n", result.TracksAdded)
	r.writePlain("  Duplicates removed: %d\n", result.DuplicatesRemoved)
	return nil
}

// Pipeline runs every stage in order.
func (r *Runner) Pipeline(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	progress, stop := r.drainProgress()
	result, err := r.engine.RunPipeline(ctx, progress, cmd.Bool("apply"))
	stop()
	if err != nil {
		return err
	}

	r.writePlain("✓ Pipeline complete\n")
	r.writePlain("  Tracks:    %d\n", len(result.Fetch.Tracks))
	r.writePlain("  Resolved:  %d (+%d cached)\n", result.Enrich.Resolved, result.Enrich.FromCache)
	r.writePlain("  Playlists: %d\n\n", result.Targets.Len())

	if result.Apply != nil {
		r.writePlain("Applied: %d playlists changed, %d tracks added\n",
			result.Apply.PlaylistsChanged, result.Apply.TracksAdded)
		return nil
	}
	r.writePlain("%s\nRun 'autolists apply' to make these changes.\n", formatter.DiffToText(result.Diffs))
	return nil
}

// Export writes the fetched library to CSV.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	tracks, _, err := r.engine.CachedLibrary()
	if err != nil {
		// CSV export only needs the track snapshot.
		loaded, loadErr := r.tracks.Load()
		if loadErr != nil || len(loaded) == 0 {
			return err
		}
		tracks = loaded
	}

	path, err := formatter.WriteTracksCSV(tracks, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d tracks to %s\n", len(tracks), path)
	return nil
}

// confirm prompts on stdin for a yes/no answer.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
