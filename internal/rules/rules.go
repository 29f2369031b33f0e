// Package rules evaluates declarative rule groups against flattened
// enrichment views.
//
// Evaluation never returns an error: a condition whose operand types do not
// fit its operator simply evaluates to false. This keeps user-authored rules
// from ever breaking a pipeline run; the worst a bad rule can do is match
// nothing.
package rules

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// BuildView folds a track's enrichment entries into one flat key/value map.
//
// Entries are applied in list order with later entries overwriting earlier
// keys, so callers control provider priority purely through ordering.
// Applying BuildView to the same list twice yields the same view.
func BuildView(entries []models.Enrichment) map[string]any {
	view := map[string]any{}
	for _, entry := range entries {
		for k, v := range entry.Categories {
			view[k] = v
		}
	}
	return view
}

// Evaluate reports whether the view satisfies the rule group.
//
// An AND group with no conditions is vacuously true; an OR group with no
// conditions is false. An unknown logical operator is false.
func Evaluate(view map[string]any, group models.RuleGroup) bool {
	switch group.Operator {
	case models.LogicalAnd:
		for _, cond := range group.Conditions {
			if !evaluateCondition(view, cond) {
				return false
			}
		}
		return true
	case models.LogicalOr:
		for _, cond := range group.Conditions {
			if evaluateCondition(view, cond) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func evaluateCondition(view map[string]any, cond models.RuleCondition) bool {
	left, present := view[cond.Field]

	switch cond.Operator {
	case models.OpEq:
		return equal(left, cond.Value)
	case models.OpNe:
		return !equal(left, cond.Value)

	case models.OpGt, models.OpLt, models.OpGte, models.OpLte:
		l, lok := toFloat(left)
		r, rok := toFloat(cond.Value)
		if !lok || !rok {
			return false
		}
		switch cond.Operator {
		case models.OpGt:
			return l > r
		case models.OpLt:
			return l < r
		case models.OpGte:
			return l >= r
		default:
			return l <= r
		}

	case models.OpBetween:
		l, lok := toFloat(left)
		bounds, bok := toSlice(cond.Value)
		if !lok || !bok || len(bounds) != 2 {
			return false
		}
		lo, lookOK := toFloat(bounds[0])
		hi, hiOK := toFloat(bounds[1])
		if !lookOK || !hiOK {
			return false
		}
		return l >= lo && l <= hi

	case models.OpIn, models.OpNotIn:
		options, ok := toSlice(cond.Value)
		if !ok {
			return false
		}
		found := false
		for _, option := range options {
			if equal(left, option) {
				found = true
				break
			}
		}
		if cond.Operator == models.OpIn {
			return found
		}
		return !found

	case models.OpContains, models.OpStartsWith, models.OpEndsWith:
		ls, lok := left.(string)
		rs, rok := cond.Value.(string)
		if !lok || !rok {
			return false
		}
		switch cond.Operator {
		case models.OpContains:
			return strings.Contains(ls, rs)
		case models.OpStartsWith:
			return strings.HasPrefix(ls, rs)
		default:
			return strings.HasSuffix(ls, rs)
		}

	case models.OpExists:
		return present && left != nil
	case models.OpNotExists:
		return !present || left == nil

	case models.OpRegex:
		ls, lok := left.(string)
		pattern, rok := cond.Value.(string)
		if !lok || !rok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			// Invalid pattern matches nothing rather than erroring out.
			return false
		}
		return re.MatchString(ls)

	default:
		return false
	}
}

// equal compares two view values, treating numeric types as interchangeable
// so that a rule authored with 120 matches a JSON-decoded 120.0. Enrichment
// payloads are arbitrary decoded JSON, so either side may be a slice or map;
// == would panic on those, so non-comparable values go through DeepEqual.
func equal(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	if !isComparable(a) || !isComparable(b) {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// toFloat coerces the numeric types that appear in decoded JSON and in
// rule literals. Booleans and strings are not numbers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// toSlice normalizes the collection types a rule value may carry. JSON
// decoding produces []any; Go callers often pass typed slices.
func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
