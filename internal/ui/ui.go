package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/tasks"
)

// refreshInterval is how often the monitor polls the job manager.
const refreshInterval = time.Second

// ViewState represents the current view in the TUI.
type ViewState int

const (
	JobListView ViewState = iota
	JobDetailView
)

// Model represents the job monitor application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	manager  *tasks.JobManager
	width    int
	height   int
	jobList  list.Model
	jobs     []models.PipelineJob
	selected string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new job monitor model backed by the provided manager.
func NewModel(ctx context.Context, manager *tasks.JobManager) *Model {
	jobList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	jobList.Title = "Pipeline Jobs"
	return &Model{
		ctx:     ctx,
		view:    JobListView,
		manager: manager,
		jobList: jobList,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Run launches the monitor and blocks until the user quits.
func Run(ctx context.Context, manager *tasks.JobManager) error {
	program := tea.NewProgram(NewModel(ctx, manager), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Init starts the first refresh and the tick loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshJobs(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.jobList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case JobListView:
			return m.handleJobListKeys(msg)
		case JobDetailView:
			return m.handleJobDetailKeys(msg)
		}

	case jobsRefreshedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.setJobs(msg.jobs)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshJobs(), m.tick())
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case JobListView:
		return m.renderJobList()
	case JobDetailView:
		return m.renderJobDetail()
	default:
		return ""
	}
}

// setJobs replaces the job snapshot, newest first, keeping the cursor stable.
func (m *Model) setJobs(jobs []models.PipelineJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	m.jobs = jobs

	index := m.jobList.Index()
	items := make([]list.Item, len(jobs))
	for i, job := range jobs {
		items[i] = jobItem{job: job}
	}
	m.jobList.SetItems(items)
	if index < len(items) {
		m.jobList.Select(index)
	}
}

func (m *Model) handleJobListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.refreshJobs()
	case "enter":
		if item, ok := m.jobList.SelectedItem().(jobItem); ok {
			m.selected = item.job.ID
			m.view = JobDetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) handleJobDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = JobListView
		m.selected = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) refreshJobs() tea.Cmd {
	return func() tea.Msg {
		jobs, err := m.manager.List()
		return jobsRefreshedMsg{jobs: jobs, err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) renderJobList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.jobList.View(), helpView)
}

func (m *Model) renderJobDetail() string {
	var job *models.PipelineJob
	for i := range m.jobs {
		if m.jobs[i].ID == m.selected {
			job = &m.jobs[i]
			break
		}
	}
	if job == nil {
		return styles.warn.Render("Job no longer available\n\nPress esc to go back")
	}

	title := styles.title.Render(fmt.Sprintf("Job %s", job.ID))

	var b strings.Builder
	fmt.Fprintf(&b, "Step:     %s\n", job.Step)
	fmt.Fprintf(&b, "Status:   %s\n", styles.statusStyle(string(job.Status)).Render(string(job.Status)))
	fmt.Fprintf(&b, "Progress: %.0f%%\n", job.Progress*100)
	fmt.Fprintf(&b, "Created:  %s\n", job.CreatedAt.Format(time.RFC3339))
	if job.StartedAt != nil {
		fmt.Fprintf(&b, "Started:  %s\n", job.StartedAt.Format(time.RFC3339))
	}
	if job.FinishedAt != nil {
		fmt.Fprintf(&b, "Finished: %s\n", job.FinishedAt.Format(time.RFC3339))
	}
	if job.Message != "" {
		fmt.Fprintf(&b, "Message:  %s\n", job.Message)
	}
	if len(job.Payload) > 0 {
		keys := make([]string, 0, len(job.Payload))
		for k := range job.Payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Payload:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", k, job.Payload[k])
		}
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}
