package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// CycleRow is a stored cycle summary.
type CycleRow struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Evaluated  int
	Claimed    int
	Completed  int
	DryRun     bool
	Error      string
}

// EvaluationRow is a stored evaluation verdict.
type EvaluationRow struct {
	CycleID   string
	BountyID  string
	Title     string
	Result    models.EvaluationResult
	CreatedAt time.Time
}

// SubmissionRow is a stored submit attempt.
type SubmissionRow struct {
	CycleID   string
	Result    models.SubmissionResult
	CreatedAt time.Time
}

// Totals aggregates the whole history.
type Totals struct {
	Cycles      int
	Evaluations int
	Suitable    int
	Submissions int
	Failed      int
}

// RecordCycle stores a cycle summary. Recording the same cycle twice replaces it.
func (db *DB) RecordCycle(ctx context.Context, r *models.CycleReport) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var finished sql.NullString
	if !r.FinishedAt.IsZero() {
		finished = sql.NullString{String: formatTime(r.FinishedAt), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO cycles
			(id, started_at, finished_at, discovered, evaluated, claimed, completed, dry_run, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, formatTime(r.StartedAt), finished, r.Discovered, r.Evaluated,
		len(r.Claimed), r.Completed(), boolToInt(r.DryRun), r.Error)
	if err != nil {
		return fmt.Errorf("record cycle %s: %w", r.ID, err)
	}
	return nil
}

// RecordEvaluation stores one verdict.
func (db *DB) RecordEvaluation(ctx context.Context, cycleID string, b models.Bounty, result models.EvaluationResult) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO evaluations
			(id, cycle_id, bounty_id, title, suitable, confidence, effort, reasoning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), cycleID, b.ID, b.Title, boolToInt(result.Suitable),
		result.Confidence, string(result.EstimatedEffort), result.Reasoning, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record evaluation of %s: %w", b.ID, err)
	}
	return nil
}

// RecordSubmission stores one submit attempt.
func (db *DB) RecordSubmission(ctx context.Context, cycleID string, result models.SubmissionResult) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO submissions (id, cycle_id, bounty_id, proof, status, submission, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), cycleID, result.BountyID, result.Proof, result.Status,
		result.Submission, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record submission of %s: %w", result.BountyID, err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (db *DB) RecentCycles(ctx context.Context, limit int) ([]CycleRow, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, started_at, finished_at, discovered, evaluated, claimed, completed, dry_run, COALESCE(error, '')
		FROM cycles ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRow
	for rows.Next() {
		var (
			c        CycleRow
			started  string
			finished sql.NullString
			dryRun   int
		)
		if err := rows.Scan(&c.ID, &started, &finished, &c.Discovered, &c.Evaluated,
			&c.Claimed, &c.Completed, &dryRun, &c.Error); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		if c.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parse cycle start: %w", err)
		}
		c.FinishedAt = parseNullableTime(finished)
		c.DryRun = dryRun != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecentEvaluations returns up to limit verdicts, newest first.
func (db *DB) RecentEvaluations(ctx context.Context, limit int) ([]EvaluationRow, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT cycle_id, bounty_id, title, suitable, confidence, effort, COALESCE(reasoning, ''), created_at
		FROM evaluations ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []EvaluationRow
	for rows.Next() {
		var (
			e        EvaluationRow
			suitable int
			effort   string
			created  string
		)
		if err := rows.Scan(&e.CycleID, &e.BountyID, &e.Title, &suitable, &e.Result.Confidence,
			&effort, &e.Result.Reasoning, &created); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.Result.Suitable = suitable != 0
		e.Result.EstimatedEffort = models.ParseEffort(effort)
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse evaluation time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentSubmissions returns up to limit submit attempts, newest first.
func (db *DB) RecentSubmissions(ctx context.Context, limit int) ([]SubmissionRow, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT cycle_id, bounty_id, proof, status, COALESCE(submission, ''), created_at
		FROM submissions ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRow
	for rows.Next() {
		var (
			s       SubmissionRow
			created string
		)
		if err := rows.Scan(&s.CycleID, &s.Result.BountyID, &s.Result.Proof, &s.Result.Status,
			&s.Result.Submission, &created); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse submission time: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Totals counts everything recorded so far.
func (db *DB) Totals(ctx context.Context) (Totals, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var t Totals
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM cycles),
			(SELECT COUNT(*) FROM evaluations),
			(SELECT COUNT(*) FROM evaluations WHERE suitable = 1),
			(SELECT COUNT(*) FROM submissions),
			(SELECT COUNT(*) FROM submissions WHERE status LIKE 'error:%')
	`).Scan(&t.Cycles, &t.Evaluations, &t.Suitable, &t.Submissions, &t.Failed)
	if err != nil {
		return Totals{}, fmt.Errorf("count history: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
