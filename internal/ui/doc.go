// Package ui implements an interactive terminal job monitor using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for watching background pipeline jobs:
//  1. [JobListView] : Browse all submitted jobs, auto-refreshing once a second
//  2. [JobDetailView] : Inspect a single job's progress, payload and errors
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving
// messages via [jobsRefreshedMsg] and [tickMsg]. Job state is polled from the job manager rather
// than pushed, so the monitor can be attached and detached at any point in a job's lifetime.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
