package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeFormat sorts lexically in chronological order.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// ErrAmbiguousRun is returned when a run id prefix matches several runs.
var ErrAmbiguousRun = errors.New("run id prefix matches more than one run")

// Run is one recorded analysis.
type Run struct {
	ID         string
	Instance   string
	Directory  string
	Rejected   bool
	Problems   int
	F2PCount   int
	P2PCount   int
	ReportPath string
	// ReportJSON is the full report. ListRuns leaves it empty.
	ReportJSON []byte
	CreatedAt  time.Time
	Rules      []RuleResult
}

// RuleResult is the stored outcome of one check in a run.
type RuleResult struct {
	Key          string
	Evaluated    bool
	HasProblem   bool
	ExampleCount int
}

// RecordRun stores run and its rule results. An empty ID is replaced with a new
// UUID and a zero CreatedAt with the current time.
func (db *DB) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	report := run.ReportJSON
	if len(report) == 0 {
		report = []byte("{}")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, instance, directory, rejected, problems, f2p_count, p2p_count, report_path, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Instance, run.Directory, boolToInt(run.Rejected), run.Problems,
		run.F2PCount, run.P2PCount, run.ReportPath, string(report), run.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range run.Rules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_rules (run_id, rule_key, evaluated, has_problem, example_count)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, r.Key, boolToInt(r.Evaluated), boolToInt(r.HasProblem), r.ExampleCount)
		if err != nil {
			return fmt.Errorf("failed to insert rule %s: %w", r.Key, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, instance, directory, rejected, problems, f2p_count, p2p_count, report_path, created_at
		FROM runs
		ORDER BY created_at DESC, id
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var rejected int
		var created string
		if err := rows.Scan(&run.ID, &run.Instance, &run.Directory, &rejected, &run.Problems,
			&run.F2PCount, &run.P2PCount, &run.ReportPath, &created); err != nil {
			return nil, err
		}
		run.Rejected = rejected != 0
		if run.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			return nil, fmt.Errorf("run %s has invalid created_at: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run whose id starts with idPrefix, with its report and rule
// results. It returns nil when nothing matches and ErrAmbiguousRun when several
// runs match.
func (db *DB) GetRun(ctx context.Context, idPrefix string) (*Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, instance, directory, rejected, problems, f2p_count, p2p_count, report_path, report_json, created_at
		FROM runs
		WHERE substr(id, 1, length(?)) = ?
		LIMIT 2
	`, idPrefix, idPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var found []Run
	for rows.Next() {
		var run Run
		var rejected int
		var report, created string
		if err := rows.Scan(&run.ID, &run.Instance, &run.Directory, &rejected, &run.Problems,
			&run.F2PCount, &run.P2PCount, &run.ReportPath, &report, &created); err != nil {
			rows.Close()
			return nil, err
		}
		run.Rejected = rejected != 0
		run.ReportJSON = []byte(report)
		if run.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("run %s has invalid created_at: %w", run.ID, err)
		}
		found = append(found, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idPrefix)
	}

	run := &found[0]
	run.Rules, err = db.ruleResults(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (db *DB) ruleResults(ctx context.Context, runID string) ([]RuleResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT rule_key, evaluated, has_problem, example_count
		FROM run_rules
		WHERE run_id = ?
		ORDER BY rule_key
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule results: %w", err)
	}
	defer rows.Close()

	var results []RuleResult
	for rows.Next() {
		var r RuleResult
		var evaluated, problem int
		if err := rows.Scan(&r.Key, &evaluated, &problem, &r.ExampleCount); err != nil {
			return nil, err
		}
		r.Evaluated = evaluated != 0
		r.HasProblem = problem != 0
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteRunsBefore removes runs created before t and returns how many were
// removed.
func (db *DB) DeleteRunsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", t.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
