package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const runColumns = "id, course, target_language, provider, status, total, translated, skipped, failed, error_message, started_at, finished_at"

// StartRun records a new running run and returns it with a fresh UUID.
func (s *Store) StartRun(ctx context.Context, course, targetLanguage, provider string) (*Run, error) {
	run := &Run{
		ID:             uuid.NewString(),
		Course:         course,
		TargetLanguage: targetLanguage,
		Provider:       provider,
		Status:         RunRunning,
		StartedAt:      time.Now().UTC(),
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, course, target_language, provider, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Course, run.TargetLanguage, run.Provider, run.Status, formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus, counts RunCounts, runErr error) error {
	var message string
	if runErr != nil {
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs
         SET status = ?, total = ?, translated = ?, skipped = ?, failed = ?,
             error_message = ?, finished_at = ?
         WHERE id = ?`,
		status, counts.Total, counts.Translated, counts.Skipped, counts.Failed,
		nullableString(message), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %s", id)
	}
	return nil
}

// GetRun returns the run with id, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, optionally filtered by course.
// A limit of zero returns every run.
func (s *Store) ListRuns(ctx context.Context, course string, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if course != "" {
		query += ` WHERE course = ?`
		args = append(args, course)
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkStaleRuns flags runs left in the running state, e.g. after a crash, as
// cancelled. It returns the number of runs updated.
func (s *Store) MarkStaleRuns(ctx context.Context, course string) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error_message = ?
         WHERE course = ? AND status = ?`,
		RunCancelled, formatTime(time.Now()), "run did not finish", course, RunRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark stale runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Course,
		&run.TargetLanguage,
		&run.Provider,
		&status,
		&run.Total,
		&run.Translated,
		&run.Skipped,
		&run.Failed,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		finished := parseTime(finishedRaw.String)
		run.FinishedAt = &finished
	}
	return &run, nil
}
