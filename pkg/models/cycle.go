package models

import "time"

// CycleReport summarizes one discover-evaluate-claim-submit pass.
type CycleReport struct {
	// ID uniquely identifies the cycle.
	ID string `json:"id"`
	// StartedAt and FinishedAt bracket the cycle.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Discovered is the number of eligible candidates after exclusion.
	Discovered int `json:"discovered"`
	// Evaluated is the number of bounties sent to the decision engine.
	Evaluated int `json:"evaluated"`
	// Skipped lists ids judged unsuitable this cycle.
	Skipped []string `json:"skipped,omitempty"`
	// Rejected lists ids that passed judgment but exceeded the reward ceiling.
	Rejected []string `json:"rejected,omitempty"`
	// Claimed lists ids claimed this cycle.
	Claimed []string `json:"claimed,omitempty"`
	// Submissions holds every submit attempt made this cycle.
	Submissions []SubmissionResult `json:"submissions,omitempty"`
	// Error is set when the cycle aborted early.
	Error string `json:"error,omitempty"`
	// DryRun is true when claim/submit were simulated.
	DryRun bool `json:"dry_run"`
}

// Duration returns how long the cycle ran.
func (r *CycleReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Completed returns the number of submissions that did not fail.
func (r *CycleReport) Completed() int {
	n := 0
	for _, s := range r.Submissions {
		if !s.Failed() {
			n++
		}
	}
	return n
}
