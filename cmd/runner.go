package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/repositories"
	"github.com/me-odo/spotify-auto-playlists/internal/services"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	"github.com/me-odo/spotify-auto-playlists/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	spotify    services.Service
	providers  *services.ProviderRegistry
	store      cache.Store
	tracks     *repositories.TrackStore
	enrich     *repositories.EnrichmentStore
	class      *repositories.ClassificationStore
	rules      *repositories.RuleStore
	jobs       *repositories.JobStore
	engine     *tasks.PipelineEngine
	manager    *tasks.JobManager
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Spotify    services.Service
	Providers  *services.ProviderRegistry
	Store      cache.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = cache.NewFileStore(opts.Config.Cache.Dir, opts.Logger)
	}
	if opts.Providers == nil {
		opts.Providers = services.NewProviderRegistry()
	}

	tracks := repositories.NewTrackStore(opts.Store)
	enrich := repositories.NewEnrichmentStore(opts.Store)
	class := repositories.NewClassificationStore(opts.Store)
	rules := repositories.NewRuleStore(opts.Store)
	jobs := repositories.NewJobStore(opts.Store)

	engine := tasks.NewPipelineEngine(tasks.EngineOpts{
		Service:         opts.Spotify,
		Providers:       opts.Providers,
		Tracks:          tracks,
		Enrichments:     enrich,
		Classifications: class,
		Rules:           rules,
		Logger:          opts.Logger,
	})

	return &Runner{
		config:     opts.Config,
		spotify:    opts.Spotify,
		providers:  opts.Providers,
		store:      opts.Store,
		tracks:     tracks,
		enrich:     enrich,
		class:      class,
		rules:      rules,
		jobs:       jobs,
		engine:     engine,
		manager:    tasks.NewJobManager(engine, jobs, opts.Logger),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when a TUI takes over the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, fetchCommand, enrichCommand, classifyCommand,
		buildCommand, diffCommand, applyCommand, pipelineCommand,
		rulesCommand, jobsCommand, serveCommand, exportCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// requireSpotify fails fast when no authenticated Spotify service is wired.
func (r *Runner) requireSpotify() error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run 'autolists auth' first", shared.ErrServiceUnavailable)
	}
	return nil
}
