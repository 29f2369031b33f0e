package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/server"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// Serve starts the HTTP API for jobs, rules, diff and apply.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := r.config.Server.Addr()
	if port := cmd.Int("port"); port > 0 {
		addr = fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	}

	handler := server.NewPipelineHandler(server.PipelineHandlerOpts{
		Engine: r.engine,
		Jobs:   r.manager,
		Rules:  r.rules,
		Logger: r.logger,
	})

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger), server.Recoverer(r.logger))
	router.Handler(handler)

	r.logger.Info("starting API server", "addr", addr)
	if err := server.Serve(ctx, addr, router, r.logger); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}
