package tasks

import (
	"context"
	"unicode"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/rules"
)

// Managed playlist naming. The prefix marks playlists as pipeline-owned;
// sync matches on the full name, so renaming a managed playlist detaches it.
const (
	allPlaylistName  = "Auto – All"
	moodPlaylistStem = "Auto – Mood – "
)

// BuildMoodTargets computes the "all tracks" membership plus one membership
// per distinct mood, in first-seen track order. Unclassified tracks appear
// only in the all-tracks target. Duplicate ids in the library collapse to
// their first occurrence.
func BuildMoodTargets(tracks []models.Track, classifications map[string]models.Classification) *Targets {
	targets := NewTargets()

	all := make([]string, 0, len(tracks))
	seen := map[string]bool{}
	moods := map[string][]string{}
	var moodOrder []string

	for _, track := range tracks {
		if track.ID == "" || seen[track.ID] {
			continue
		}
		seen[track.ID] = true
		all = append(all, track.ID)

		mood := classifications[track.ID].Mood
		if mood == "" || mood == models.MoodUnclassified {
			continue
		}
		if _, exists := moods[mood]; !exists {
			moodOrder = append(moodOrder, mood)
		}
		moods[mood] = append(moods[mood], track.ID)
	}

	targets.Add(allPlaylistName, all)
	for _, mood := range moodOrder {
		targets.Add(moodPlaylistStem+capitalize(mood), moods[mood])
	}
	return targets
}

// BuildRuleTargets computes one membership per enabled rule set, named after
// the set. A track belongs to a set when its flattened enrichment view
// satisfies the set's root group.
func BuildRuleTargets(tracks []models.Track, entries map[string][]models.Enrichment, sets []models.RuleSet) *Targets {
	targets := NewTargets()

	for _, set := range sets {
		if !set.Enabled || set.Name == "" {
			continue
		}

		var ids []string
		seen := map[string]bool{}
		for _, track := range tracks {
			if track.ID == "" || seen[track.ID] {
				continue
			}
			seen[track.ID] = true

			view := map[string]any{}
			if tracked := entries[track.ID]; len(tracked) > 0 {
				view = rules.BuildView(tracked)
			}
			if rules.Evaluate(view, set.Rules) {
				ids = append(ids, track.ID)
			}
		}
		targets.Add(set.Name, ids)
	}
	return targets
}

// BuildAllTargets loads the cached pipeline state and computes the complete
// target collection: mood playlists first, then rule set playlists. A rule
// set sharing a name with a mood playlist unions into it.
func (e *PipelineEngine) BuildAllTargets(ctx context.Context, progress chan<- ProgressUpdate) (*Targets, error) {
	tracks, err := e.loadTracks()
	if err != nil {
		return nil, err
	}
	classifications, err := e.loadClassifications()
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, buildTargetsUpdate(0, 1))

	targets := BuildMoodTargets(tracks, classifications)

	sets, err := e.rules.Load()
	if err != nil {
		return nil, err
	}
	if len(sets) > 0 {
		entries, err := e.enrichments.Load()
		if err != nil {
			return nil, err
		}
		targets.Merge(BuildRuleTargets(tracks, entries, sets))
	}

	e.sendProgress(progress, buildTargetsUpdate(1, 1))
	e.logger.Info("built playlist targets", "playlists", targets.Len())

	return targets, nil
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
