package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/repositories"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	"github.com/me-odo/spotify-auto-playlists/internal/tasks"
)

// PipelineHandler exposes pipeline jobs, rule sets, diff preview, and apply
// over HTTP.
type PipelineHandler struct {
	engine *tasks.PipelineEngine
	jobs   *tasks.JobManager
	rules  *repositories.RuleStore
	logger *log.Logger
}

// PipelineHandlerOpts bundles the collaborators for a PipelineHandler.
type PipelineHandlerOpts struct {
	Engine *tasks.PipelineEngine
	Jobs   *tasks.JobManager
	Rules  *repositories.RuleStore
	Logger *log.Logger
}

// NewPipelineHandler creates a PipelineHandler.
func NewPipelineHandler(opts PipelineHandlerOpts) *PipelineHandler {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PipelineHandler{
		engine: opts.Engine,
		jobs:   opts.Jobs,
		rules:  opts.Rules,
		logger: logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PipelineHandler) Routes() []string {
	return []string{
		"/api/jobs",
		"/api/jobs/",
		"/api/rules",
		"/api/rules/",
		"/api/diff",
		"/api/apply",
	}
}

// ServeHTTP dispatches requests to the pipeline endpoints.
func (h *PipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/jobs":
		h.handleJobs(w, r)
	case strings.HasPrefix(path, "/api/jobs/"):
		h.handleJob(w, r, strings.TrimPrefix(path, "/api/jobs/"))
	case path == "/api/rules/preview":
		h.handleRulePreview(w, r)
	case path == "/api/rules":
		h.handleRules(w, r)
	case strings.HasPrefix(path, "/api/rules/"):
		h.handleRule(w, r, strings.TrimPrefix(path, "/api/rules/"))
	case path == "/api/diff":
		h.handleDiff(w, r)
	case path == "/api/apply":
		h.handleApply(w, r)
	default:
		http.NotFound(w, r)
	}
}

type submitJobRequest struct {
	Step     string            `json:"step"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *PipelineHandler) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs, err := h.jobs.List()
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	case http.MethodPost:
		var req submitJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		job, err := h.jobs.Submit(r.Context(), req.Step, req.Metadata)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PipelineHandler) handleJob(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	job, err := h.jobs.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *PipelineHandler) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sets, err := h.rules.Load()
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sets)
	case http.MethodPost, http.MethodPut:
		var set models.RuleSet
		if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if set.ID == "" || set.Name == "" {
			http.Error(w, "Rule set requires id and name", http.StatusBadRequest)
			return
		}
		if err := h.rules.Upsert(set); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PipelineHandler) handleRule(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.rules.Delete(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rulePreviewResponse struct {
	Name     string   `json:"name"`
	TrackIDs []string `json:"track_ids"`
	Count    int      `json:"count"`
}

// handleRulePreview evaluates a rule set against the cached library without
// persisting it.
func (h *PipelineHandler) handleRulePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var set models.RuleSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if set.Name == "" {
		set.Name = "preview"
	}
	set.Enabled = true

	tracks, entries, err := h.engine.CachedLibrary()
	if err != nil {
		h.writeError(w, err)
		return
	}

	targets := tasks.BuildRuleTargets(tracks, entries, []models.RuleSet{set})
	writeJSON(w, http.StatusOK, rulePreviewResponse{
		Name:     set.Name,
		TrackIDs: targets.Sets[set.Name],
		Count:    len(targets.Sets[set.Name]),
	})
}

func (h *PipelineHandler) handleDiff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	targets, err := h.engine.BuildAllTargets(r.Context(), nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	diffs, err := h.engine.PreviewDiffs(r.Context(), nil, targets)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diffs)
}

func (h *PipelineHandler) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	targets, err := h.engine.BuildAllTargets(r.Context(), nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.engine.ApplyDiffs(r.Context(), nil, targets)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps domain errors to HTTP status codes.
func (h *PipelineHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrUnknownStep), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrCacheEmpty):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
