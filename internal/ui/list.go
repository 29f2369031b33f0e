package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

var _ list.Item = jobItem{}

// jobItem wraps [models.PipelineJob] to implement [list.Item].
type jobItem struct {
	job models.PipelineJob
}

func (i jobItem) FilterValue() string { return i.job.Step }

func (i jobItem) Title() string {
	return fmt.Sprintf("%s  [%s]", i.job.Step, i.job.Status)
}

func (i jobItem) Description() string {
	desc := fmt.Sprintf("%s • %.0f%%", i.job.ID, i.job.Progress*100)
	if i.job.Message != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.job.Message)
	}
	return desc
}
