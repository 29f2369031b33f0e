package rules

import (
	"testing"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

func cond(field string, op models.Operator, value any) models.RuleCondition {
	return models.RuleCondition{Field: field, Operator: op, Value: value}
}

func andGroup(conditions ...models.RuleCondition) models.RuleGroup {
	return models.RuleGroup{Operator: models.LogicalAnd, Conditions: conditions}
}

func orGroup(conditions ...models.RuleCondition) models.RuleGroup {
	return models.RuleGroup{Operator: models.LogicalOr, Conditions: conditions}
}

func TestBuildViewLastEntryWins(t *testing.T) {
	entries := []models.Enrichment{
		{Source: "acousticbrainz", Categories: map[string]any{"mood": "chill", "tempo": 100.0}},
		{Source: "manual", Categories: map[string]any{"mood": "happy"}},
	}

	view := BuildView(entries)
	if view["mood"] != "happy" {
		t.Errorf("view[mood] = %v, want happy (later entry wins)", view["mood"])
	}
	if view["tempo"] != 100.0 {
		t.Errorf("view[tempo] = %v, want 100", view["tempo"])
	}

	// Idempotent under repeated application.
	again := BuildView(entries)
	if len(again) != len(view) || again["mood"] != view["mood"] {
		t.Errorf("BuildView() not stable: %v vs %v", again, view)
	}
}

func TestBuildViewEmpty(t *testing.T) {
	if view := BuildView(nil); len(view) != 0 {
		t.Errorf("BuildView(nil) = %v, want empty", view)
	}
}

func TestEvaluateEmptyGroups(t *testing.T) {
	view := map[string]any{"mood": "chill"}

	if !Evaluate(view, andGroup()) {
		t.Error("AND over empty conditions should be vacuously true")
	}
	if Evaluate(view, orGroup()) {
		t.Error("OR over empty conditions should be false")
	}
	if Evaluate(view, models.RuleGroup{Operator: "xor"}) {
		t.Error("unknown logical operator should be false")
	}
}

func TestEvaluateEqNe(t *testing.T) {
	view := map[string]any{"mood": "chill", "tempo": 120.0}

	tc := []struct {
		name string
		cond models.RuleCondition
		want bool
	}{
		{"eq string match", cond("mood", models.OpEq, "chill"), true},
		{"eq string mismatch", cond("mood", models.OpEq, "happy"), false},
		{"eq numeric int vs float", cond("tempo", models.OpEq, 120), true},
		{"ne mismatch", cond("mood", models.OpNe, "happy"), true},
		{"eq missing field", cond("nope", models.OpEq, "x"), false},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(view, andGroup(tt.cond)); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateEqOnDecodedJSONValues(t *testing.T) {
	// Provider payloads are arbitrary decoded JSON, so view values can be
	// slices or maps. Comparing those must evaluate, not panic.
	view := map[string]any{
		"genres": []any{"rock", "pop"},
		"extra":  map[string]any{"bpm": 120.0},
		"mood":   "chill",
	}

	tc := []struct {
		name string
		cond models.RuleCondition
		want bool
	}{
		{"eq slice match", cond("genres", models.OpEq, []any{"rock", "pop"}), true},
		{"eq slice mismatch", cond("genres", models.OpEq, []any{"rock"}), false},
		{"eq slice vs string", cond("genres", models.OpEq, "rock"), false},
		{"ne slice mismatch", cond("genres", models.OpNe, []any{"jazz"}), true},
		{"eq map match", cond("extra", models.OpEq, map[string]any{"bpm": 120.0}), true},
		{"in with slice-valued field", cond("genres", models.OpIn, []any{"rock", "pop"}), false},
		{"not_in with slice-valued field", cond("genres", models.OpNotIn, []any{"rock"}), true},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(view, andGroup(tt.cond)); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateNumericComparisons(t *testing.T) {
	view := map[string]any{"tempo": 120.0, "mood": "chill"}

	tc := []struct {
		name string
		cond models.RuleCondition
		want bool
	}{
		{"gt true", cond("tempo", models.OpGt, 100), true},
		{"gt false", cond("tempo", models.OpGt, 120), false},
		{"gte boundary", cond("tempo", models.OpGte, 120), true},
		{"lt false", cond("tempo", models.OpLt, 100), false},
		{"lte boundary", cond("tempo", models.OpLte, 120), true},
		{"non-numeric left", cond("mood", models.OpGt, 1), false},
		{"non-numeric right", cond("tempo", models.OpGt, "fast"), false},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(view, andGroup(tt.cond)); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateBetween(t *testing.T) {
	view := map[string]any{"tempo": 120.0}

	tc := []struct {
		name  string
		value any
		want  bool
	}{
		{"inside range", []any{100, 130}, true},
		{"below range", []any{121, 130}, false},
		{"inclusive bounds", []any{120, 120}, true},
		{"wrong arity", []any{100}, false},
		{"non-numeric bounds", []any{"a", "b"}, false},
		{"non-collection value", 100, false},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(view, andGroup(cond("tempo", models.OpBetween, tt.value)))
			if got != tt.want {
				t.Errorf("Evaluate(between %v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestEvaluateMembership(t *testing.T) {
	view := map[string]any{"mood": "chill"}

	if !Evaluate(view, andGroup(cond("mood", models.OpIn, []any{"chill", "happy"}))) {
		t.Error("in should match")
	}
	if Evaluate(view, andGroup(cond("mood", models.OpIn, []any{"party"}))) {
		t.Error("in should not match")
	}
	if !Evaluate(view, andGroup(cond("mood", models.OpNotIn, []string{"party"}))) {
		t.Error("not_in should match")
	}
	// Non-collection value evaluates false for both membership operators.
	if Evaluate(view, andGroup(cond("mood", models.OpIn, "chill"))) {
		t.Error("in with scalar value should be false")
	}
	if Evaluate(view, andGroup(cond("mood", models.OpNotIn, "chill"))) {
		t.Error("not_in with scalar value should be false")
	}
}

func TestEvaluateStringOperators(t *testing.T) {
	view := map[string]any{"genre": "indie rock", "tempo": 120.0}

	tc := []struct {
		name string
		cond models.RuleCondition
		want bool
	}{
		{"contains", cond("genre", models.OpContains, "die r"), true},
		{"starts_with", cond("genre", models.OpStartsWith, "indie"), true},
		{"ends_with", cond("genre", models.OpEndsWith, "rock"), true},
		{"contains miss", cond("genre", models.OpContains, "jazz"), false},
		{"non-string left", cond("tempo", models.OpContains, "1"), false},
		{"non-string right", cond("genre", models.OpContains, 5), false},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(view, andGroup(tt.cond)); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateExistence(t *testing.T) {
	view := map[string]any{"mood": "chill", "nilval": nil}

	if !Evaluate(view, andGroup(cond("mood", models.OpExists, nil))) {
		t.Error("exists should be true for present value")
	}
	if Evaluate(view, andGroup(cond("nilval", models.OpExists, nil))) {
		t.Error("exists should be false for nil value")
	}
	if Evaluate(view, andGroup(cond("missing", models.OpExists, nil))) {
		t.Error("exists should be false for absent key")
	}
	if !Evaluate(view, andGroup(cond("missing", models.OpNotExists, nil))) {
		t.Error("not_exists should be true for absent key")
	}
	if !Evaluate(view, andGroup(cond("nilval", models.OpNotExists, nil))) {
		t.Error("not_exists should be true for nil value")
	}
}

func TestEvaluateRegex(t *testing.T) {
	view := map[string]any{"genre": "post-punk revival"}

	if !Evaluate(view, andGroup(cond("genre", models.OpRegex, `^post-\w+`))) {
		t.Error("regex should match")
	}
	if Evaluate(view, andGroup(cond("genre", models.OpRegex, `^jazz`))) {
		t.Error("regex should not match")
	}
	// An invalid pattern evaluates false, never errors.
	if Evaluate(view, andGroup(cond("genre", models.OpRegex, `([`))) {
		t.Error("invalid regex should evaluate false")
	}
}

func TestEvaluateUnknownOperator(t *testing.T) {
	view := map[string]any{"mood": "chill"}
	if Evaluate(view, andGroup(cond("mood", "fuzzy_match", "chill"))) {
		t.Error("unknown operator should evaluate false")
	}
}

func TestEvaluateCombinedGroups(t *testing.T) {
	view := map[string]any{"mood": "chill", "tempo": 95.0}

	and := andGroup(
		cond("mood", models.OpEq, "chill"),
		cond("tempo", models.OpLt, 100),
	)
	if !Evaluate(view, and) {
		t.Error("AND group with all matching conditions should be true")
	}

	or := orGroup(
		cond("mood", models.OpEq, "party"),
		cond("tempo", models.OpBetween, []any{90, 100}),
	)
	if !Evaluate(view, or) {
		t.Error("OR group with one matching condition should be true")
	}
}
