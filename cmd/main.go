package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/services"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.Service
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		}
	}

	store, err := buildStore(config, logger)
	if err != nil {
		logger.Fatalf("failed to open cache: %v", err)
	}

	registry := services.NewProviderRegistry(
		services.NewAcousticBrainzProvider(nil, config.Credentials.MusicBrainz.UserAgent),
	)

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Spotify:   spotifyService,
		Providers: registry,
		Store:     store,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "autolists",
		Usage:    "Build mood playlists from your Spotify library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// buildStore opens the configured cache backend.
func buildStore(config *shared.Config, logger *log.Logger) (cache.Store, error) {
	if config.Cache.Backend == "sqlite" {
		db, err := shared.NewDatabase(config.Cache.Path)
		if err != nil {
			return nil, err
		}
		return cache.NewSQLiteStore(db, logger)
	}
	return cache.NewFileStore(config.Cache.Dir, logger), nil
}
