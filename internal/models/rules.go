package models

// Operator enumerates the condition operators supported by the rule engine.
//
// Unknown operator tags never fail evaluation; they evaluate to false.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpLt         Operator = "lt"
	OpGte        Operator = "gte"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpNotIn      Operator = "not_in"
	OpBetween    Operator = "between"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpExists     Operator = "exists"
	OpNotExists  Operator = "not_exists"
	OpRegex      Operator = "regex"
)

// LogicalOperator combines the conditions of a RuleGroup.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

// RuleCondition is a single (field, operator, value) predicate evaluated
// against a flattened enrichment view.
type RuleCondition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// RuleGroup combines conditions under a logical operator.
//
// An AND group with no conditions is vacuously true; an OR group with no
// conditions is false. Callers rely on this asymmetry.
type RuleGroup struct {
	Operator   LogicalOperator `json:"operator"`
	Conditions []RuleCondition `json:"conditions"`
}

// RuleSet is a named, persisted rule group that can drive playlist building.
// Identity is the ID; saving a set with an existing ID replaces it.
type RuleSet struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Rules            RuleGroup `json:"rules"`
	TargetPlaylistID string    `json:"target_playlist_id,omitempty"`
	Enabled          bool      `json:"enabled"`
}
