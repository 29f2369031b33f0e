package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/formatter"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	"github.com/me-odo/spotify-auto-playlists/internal/ui"
)

// JobsSubmit queues a pipeline step as a background job.
func (r *Runner) JobsSubmit(ctx context.Context, cmd *cli.Command) error {
	step := cmd.StringArg("step")
	if step == "" {
		return fmt.Errorf("%w: step name is required (fetch, enrich, classify, build, diff)", shared.ErrInvalidArgument)
	}

	job, err := r.manager.Submit(ctx, step, map[string]string{"source": "cli"})
	if err != nil {
		return err
	}

	r.writePlain("✓ Job submitted: %s (%s)\n", job.ID, job.Step)

	if !cmd.Bool("wait") {
		r.writePlain("Check progress with 'autolists jobs status %s'\n", job.ID)
		return nil
	}

	r.manager.Wait()
	final, err := r.manager.Get(job.ID)
	if err != nil {
		return err
	}
	if final.Status == models.JobError {
		return fmt.Errorf("job %s failed: %s", final.ID, final.Message)
	}
	r.writePlain("✓ Job finished: %s\n", final.Status)
	return nil
}

// JobsStatus prints the state of a single job.
func (r *Runner) JobsStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrInvalidArgument)
	}

	job, err := r.manager.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}

	r.writePlain("%s", formatter.JobsToText([]models.PipelineJob{job}))
	return nil
}

// JobsList prints all known jobs.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	jobs, err := r.manager.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(jobs, true)
	}

	if len(jobs) == 0 {
		r.writePlain("No jobs submitted.\n")
		return nil
	}
	r.writePlain("%s", formatter.JobsToText(jobs))
	return nil
}

// JobsWatch launches the interactive job monitor.
func (r *Runner) JobsWatch(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/autolists-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := ui.Run(ctx, r.manager); err != nil {
		return fmt.Errorf("error running job monitor: %w", err)
	}
	return nil
}
