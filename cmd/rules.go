package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	"github.com/me-odo/spotify-auto-playlists/internal/tasks"
)

// RulesList prints all stored rule sets.
func (r *Runner) RulesList(ctx context.Context, cmd *cli.Command) error {
	sets, err := r.rules.Load()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sets, true)
	}

	if len(sets) == 0 {
		r.writePlain("No rule sets stored.\n")
		return nil
	}

	r.writePlain("Found %d rule sets:\n\n", len(sets))
	for i, set := range sets {
		status := "enabled"
		if !set.Enabled {
			status = "disabled"
		}
		r.writePlain("%d. %s (%s)\n", i+1, set.Name, status)
		r.writePlain("   ID: %s\n", set.ID)
		if set.Description != "" {
			r.writePlain("   Description: %s\n", set.Description)
		}
		r.writePlain("   Conditions: %d (%s)\n\n", len(set.Rules.Conditions), set.Rules.Operator)
	}
	return nil
}

// readRuleSet loads and validates a rule set JSON file.
func readRuleSet(path string) (models.RuleSet, error) {
	var set models.RuleSet
	if path == "" {
		return set, fmt.Errorf("%w: rule set file path is required", shared.ErrInvalidArgument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read rule set file: %w", err)
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return set, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return set, nil
}

// RulesAdd upserts a rule set from a JSON file.
func (r *Runner) RulesAdd(ctx context.Context, cmd *cli.Command) error {
	set, err := readRuleSet(cmd.StringArg("path"))
	if err != nil {
		return err
	}
	if set.ID == "" {
		set.ID = shared.GenerateID()
	}
	if set.Name == "" {
		return fmt.Errorf("%w: rule set requires a name", shared.ErrInvalidInput)
	}

	if err := r.rules.Upsert(set); err != nil {
		return err
	}

	r.writePlain("✓ Rule set saved: %s (%s)\n", set.Name, set.ID)
	return nil
}

// RulesDelete removes a rule set by id.
func (r *Runner) RulesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: rule set id is required", shared.ErrInvalidArgument)
	}
	if err := r.rules.Delete(id); err != nil {
		return err
	}
	r.writePlain("✓ Rule set deleted: %s\n", id)
	return nil
}

// RulesPreview evaluates a rule set file against the cached library.
func (r *Runner) RulesPreview(ctx context.Context, cmd *cli.Command) error {
	set, err := readRuleSet(cmd.StringArg("path"))
	if err != nil {
		return err
	}
	if set.Name == "" {
		set.Name = "preview"
	}
	set.Enabled = true

	libTracks, entries, err := r.engine.CachedLibrary()
	if err != nil {
		return err
	}

	targets := tasks.BuildRuleTargets(libTracks, entries, []models.RuleSet{set})
	ids := targets.Sets[set.Name]

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"name": set.Name, "track_ids": ids, "count": len(ids)}, true)
	}

	r.writePlain("Rule set '%s' matches %d tracks:\n", set.Name, len(ids))
	byID := map[string]models.Track{}
	for _, track := range libTracks {
		byID[track.ID] = track
	}
	for i, id := range ids {
		track := byID[id]
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
	}
	return nil
}
