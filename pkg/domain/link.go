package domain

import "math"

// Link is a directed, valued flow between two nodes.
// Source and Target hold node IDs, never display names. Duplicate
// (Source, Target) pairs are legal and represent distinct flows; the
// renderer may aggregate them, the model does not.
type Link struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Value  float64 `json:"value" yaml:"value"`

	// PreviousValue carries the prior-period value for comparison
	// rendering. Zero means "no comparison recorded" only when
	// ComparisonLabel is also empty.
	PreviousValue   float64 `json:"previous_value,omitempty" yaml:"previous_value,omitempty"`
	ComparisonLabel string  `json:"comparison_label,omitempty" yaml:"comparison_label,omitempty"`

	Color   string  `json:"color,omitempty" yaml:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// Validate checks the link invariants in isolation: a finite, strictly
// positive value and distinct endpoints. Endpoint existence is checked
// by callers that hold the node set.
func (l Link) Validate() error {
	if l.Source == "" || l.Target == "" {
		return ValidationError{Field: "link", Reason: "source and target are required"}
	}
	if l.Source == l.Target {
		return ValidationError{Field: "link", Reason: "self-loops are not allowed: " + l.Source}
	}
	if math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
		return ValidationError{Field: "value", Reason: "value must be finite"}
	}
	if l.Value <= 0 {
		return ValidationError{Field: "value", Reason: "value must be strictly positive"}
	}
	return nil
}
