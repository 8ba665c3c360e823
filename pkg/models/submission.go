package models

import "strings"

// SubmissionStatusDryRun marks a submission that was simulated locally.
const SubmissionStatusDryRun = "dry_run"

// SubmissionResult records one submit attempt.
type SubmissionResult struct {
	// BountyID is the bounty the work was submitted for.
	BountyID string `json:"bounty_id"`
	// Submission is the generated work text.
	Submission string `json:"submission"`
	// Proof is the URL-shaped proof reference sent with the submission.
	Proof string `json:"proof"`
	// Status is the remote status, "dry_run", or "error: <message>".
	Status string `json:"status"`
}

// Failed reports whether the submit attempt ended in an error.
func (r SubmissionResult) Failed() bool {
	return strings.HasPrefix(r.Status, "error:")
}

// SubmissionError formats the status string recorded for a failed submit.
func SubmissionError(err error) string {
	return "error: " + err.Error()
}
