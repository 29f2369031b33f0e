package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/repositories"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// Pipeline steps accepted by JobManager.Submit. Apply is deliberately absent:
// mutating the remote library requires an explicit, synchronous invocation.
var submittableSteps = map[string]bool{
	"fetch":    true,
	"enrich":   true,
	"classify": true,
	"build":    true,
	"diff":     true,
}

// JobManager runs pipeline steps asynchronously, persisting every job state
// transition so job status survives process restarts.
type JobManager struct {
	engine *PipelineEngine
	store  *repositories.JobStore
	logger *log.Logger

	mu sync.Mutex // serializes job document writes
	wg sync.WaitGroup
}

// NewJobManager creates a JobManager backed by the given engine and store.
func NewJobManager(engine *PipelineEngine, store *repositories.JobStore, logger *log.Logger) *JobManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &JobManager{engine: engine, store: store, logger: logger}
}

// Submit creates a pending job for the given step and starts it in the
// background. The returned job snapshot has status pending; poll Get for
// progress and completion.
func (m *JobManager) Submit(ctx context.Context, step string, metadata map[string]string) (models.PipelineJob, error) {
	if step == "apply" {
		return models.PipelineJob{}, fmt.Errorf("%w: apply cannot run as a background job, invoke it directly", shared.ErrInvalidArgument)
	}
	if !submittableSteps[step] {
		return models.PipelineJob{}, fmt.Errorf("%w: '%s'", shared.ErrUnknownStep, step)
	}

	job := models.PipelineJob{
		ID:        shared.GenerateID(),
		Step:      step,
		Status:    models.JobPending,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}
	if err := m.persist(job); err != nil {
		return models.PipelineJob{}, err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx, job)
	}()

	return job, nil
}

// Get returns the job with the given id.
func (m *JobManager) Get(id string) (models.PipelineJob, error) {
	job, found, err := m.store.Get(id)
	if err != nil {
		return models.PipelineJob{}, err
	}
	if !found {
		return models.PipelineJob{}, fmt.Errorf("%w: '%s'", shared.ErrJobNotFound, id)
	}
	return job, nil
}

// List returns all known jobs, oldest first.
func (m *JobManager) List() ([]models.PipelineJob, error) {
	return m.store.List()
}

// Wait blocks until all in-flight jobs finish. Used on shutdown.
func (m *JobManager) Wait() {
	m.wg.Wait()
}

// run executes a job to a terminal state. A panicking stage marks the job as
// errored instead of taking the process down.
func (m *JobManager) run(ctx context.Context, job models.PipelineJob) {
	now := time.Now().UTC()
	job.Status = models.JobRunning
	job.StartedAt = &now
	if err := m.persist(job); err != nil {
		m.logger.Error("failed to persist job transition", "job", job.ID, "error", err)
	}

	progress := make(chan ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.trackProgress(&job, progress)
	}()

	var payload map[string]any
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("step panicked: %v", r)
			}
		}()
		payload, err = m.execute(ctx, job.Step, progress)
	}()

	close(progress)
	<-done

	m.finish(job, payload, err)
}

// trackProgress folds stage progress updates into the job record, persisting
// at coarse intervals to keep cache churn bounded.
func (m *JobManager) trackProgress(job *models.PipelineJob, progress <-chan ProgressUpdate) {
	lastPersisted := 0.0
	for update := range progress {
		if update.Total <= 0 {
			continue
		}
		job.Progress = float64(update.Step) / float64(update.Total)
		job.Message = update.Message

		if job.Progress-lastPersisted >= 0.1 || update.Step == update.Total {
			lastPersisted = job.Progress
			if err := m.persist(*job); err != nil {
				m.logger.Debug("failed to persist job progress", "job", job.ID, "error", err)
			}
		}
	}
}

// execute dispatches a step to the engine and summarizes its result as the
// job payload.
func (m *JobManager) execute(ctx context.Context, step string, progress chan<- ProgressUpdate) (map[string]any, error) {
	switch step {
	case "fetch":
		result, err := m.engine.FetchTracks(ctx, progress, FetchOpts{ForceRefresh: true})
		if err != nil {
			return nil, err
		}
		return map[string]any{"tracks": len(result.Tracks)}, nil
	case "enrich":
		result, err := m.engine.EnrichTracks(ctx, progress, EnrichOpts{})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"resolved":  result.Resolved,
			"cached":    result.FromCache,
			"unmatched": len(result.Unmatched),
		}, nil
	case "classify":
		result, err := m.engine.ClassifyTracks(ctx, progress, ClassifyOpts{})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"computed": result.Computed,
			"cached":   result.FromCache,
			"moods":    result.MoodCounts,
		}, nil
	case "build":
		targets, err := m.engine.BuildAllTargets(ctx, progress)
		if err != nil {
			return nil, err
		}
		sizes := map[string]any{}
		for _, name := range targets.Names {
			sizes[name] = len(targets.Sets[name])
		}
		return map[string]any{"playlists": targets.Len(), "sizes": sizes}, nil
	case "diff":
		targets, err := m.engine.BuildAllTargets(ctx, progress)
		if err != nil {
			return nil, err
		}
		diffs, err := m.engine.PreviewDiffs(ctx, progress, targets)
		if err != nil {
			return nil, err
		}
		changed := 0
		additions := 0
		duplicates := 0
		for _, diff := range diffs {
			if diff.HasChanges() {
				changed++
			}
			additions += len(diff.NewToAdd)
			duplicates += len(diff.Duplicates)
		}
		return map[string]any{
			"playlists":  len(diffs),
			"changed":    changed,
			"additions":  additions,
			"duplicates": duplicates,
		}, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", shared.ErrUnknownStep, step)
	}
}

// finish writes the terminal state for a job.
func (m *JobManager) finish(job models.PipelineJob, payload map[string]any, err error) {
	now := time.Now().UTC()
	job.FinishedAt = &now
	if err != nil {
		job.Status = models.JobError
		job.Message = err.Error()
		m.logger.Error("job failed", "job", job.ID, "step", job.Step, "error", err)
	} else {
		job.Status = models.JobDone
		job.Progress = 1.0
		job.Message = ""
		job.Payload = payload
		m.logger.Info("job finished", "job", job.ID, "step", job.Step)
	}
	if persistErr := m.persist(job); persistErr != nil {
		m.logger.Error("failed to persist job transition", "job", job.ID, "error", persistErr)
	}
}

func (m *JobManager) persist(job models.PipelineJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Put(job)
}
