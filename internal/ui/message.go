package ui

import (
	"time"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// jobsRefreshedMsg carries the latest snapshot of all jobs from the manager.
type jobsRefreshedMsg struct {
	jobs []models.PipelineJob
	err  error
}

// tickMsg drives the periodic refresh of the job list.
type tickMsg time.Time
