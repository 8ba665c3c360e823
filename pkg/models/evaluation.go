package models

import "strings"

// Effort is a coarse estimate of how much work a bounty needs.
type Effort string

const (
	// EffortLow indicates a small, well-scoped change.
	EffortLow Effort = "low"
	// EffortMedium indicates a moderate amount of work.
	EffortMedium Effort = "medium"
	// EffortHigh indicates substantial or uncertain work.
	EffortHigh Effort = "high"
)

// Valid returns true if the effort is a known value.
func (e Effort) Valid() bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	default:
		return false
	}
}

// ParseEffort normalizes free text into an Effort. Unknown values map to EffortHigh.
func ParseEffort(s string) Effort {
	e := Effort(strings.ToLower(strings.TrimSpace(s)))
	if e.Valid() {
		return e
	}
	return EffortHigh
}

// EvaluationResult is the suitability judgment for one bounty.
// It is produced once per bounty per cycle and never persisted into agent state.
type EvaluationResult struct {
	// Suitable is true when the oracle judged the bounty a match for the skill set.
	Suitable bool `json:"suitable"`
	// Confidence is the judgment confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// Reasoning is the free-text justification.
	Reasoning string `json:"reasoning"`
	// EstimatedEffort is the coarse effort estimate.
	EstimatedEffort Effort `json:"estimatedEffort"`
}

// Rejected returns the fail-closed judgment used whenever evaluation cannot be trusted.
func Rejected(reason string) EvaluationResult {
	return EvaluationResult{
		Suitable:        false,
		Confidence:      0,
		Reasoning:       reason,
		EstimatedEffort: EffortHigh,
	}
}
