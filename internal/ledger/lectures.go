package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const lectureColumns = "course, member, target_language, run_id, status, cue_count, output_path, error_message, error_kind, updated_at"

// RecordLecture upserts the latest outcome for a lecture.
func (s *Store) RecordLecture(ctx context.Context, lecture Lecture) error {
	if lecture.Course == "" || lecture.Member == "" || lecture.TargetLanguage == "" {
		return errors.New("record lecture: course, member and target language are required")
	}
	if lecture.UpdatedAt.IsZero() {
		lecture.UpdatedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO lectures (`+lectureColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (course, member, target_language) DO UPDATE SET
             run_id = excluded.run_id,
             status = excluded.status,
             cue_count = excluded.cue_count,
             output_path = excluded.output_path,
             error_message = excluded.error_message,
             error_kind = excluded.error_kind,
             updated_at = excluded.updated_at`,
		lecture.Course,
		lecture.Member,
		lecture.TargetLanguage,
		nullableString(lecture.RunID),
		lecture.Status,
		lecture.CueCount,
		nullableString(lecture.OutputPath),
		nullableString(lecture.ErrorMessage),
		nullableString(lecture.ErrorKind),
		formatTime(lecture.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("record lecture: %w", err)
	}
	return nil
}

// GetLecture returns the recorded outcome, or nil when none exists.
func (s *Store) GetLecture(ctx context.Context, course, member, targetLanguage string) (*Lecture, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE course = ? AND member = ? AND target_language = ?`,
		course, member, targetLanguage,
	)
	lecture, err := scanLecture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture: %w", err)
	}
	return lecture, nil
}

// ListLectures returns the lectures of a course ordered by member name.
// An empty targetLanguage matches every language.
func (s *Store) ListLectures(ctx context.Context, course, targetLanguage string) ([]*Lecture, error) {
	query := `SELECT ` + lectureColumns + ` FROM lectures WHERE course = ?`
	args := []any{course}
	if targetLanguage != "" {
		query += ` AND target_language = ?`
		args = append(args, targetLanguage)
	}
	query += ` ORDER BY member, target_language`
	return s.queryLectures(ctx, query, args...)
}

// LecturesForRun returns the lectures last touched by a run.
func (s *Store) LecturesForRun(ctx context.Context, runID string) ([]*Lecture, error) {
	return s.queryLectures(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE run_id = ? ORDER BY member`,
		runID,
	)
}

// CourseSummaries aggregates lecture outcomes per course and language.
func (s *Store) CourseSummaries(ctx context.Context) ([]CourseSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course, target_language,
                SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
                SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
                SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
                MAX(updated_at)
         FROM lectures
         GROUP BY course, target_language
         ORDER BY course, target_language`,
		LectureTranslated, LectureFailed, LectureSkipped,
	)
	if err != nil {
		return nil, fmt.Errorf("course summaries: %w", err)
	}
	defer rows.Close()

	var summaries []CourseSummary
	for rows.Next() {
		var (
			summary CourseSummary
			updated string
		)
		if err := rows.Scan(
			&summary.Course,
			&summary.TargetLanguage,
			&summary.Translated,
			&summary.Failed,
			&summary.Skipped,
			&updated,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.LastUpdated = parseTime(updated)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) queryLectures(ctx context.Context, query string, args ...any) ([]*Lecture, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()

	var lectures []*Lecture
	for rows.Next() {
		lecture, err := scanLecture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		lectures = append(lectures, lecture)
	}
	return lectures, rows.Err()
}

func scanLecture(scanner interface{ Scan(dest ...any) error }) (*Lecture, error) {
	var (
		lecture    Lecture
		runID      sql.NullString
		status     string
		outputPath sql.NullString
		errorMsg   sql.NullString
		errorKind  sql.NullString
		updatedRaw string
	)
	if err := scanner.Scan(
		&lecture.Course,
		&lecture.Member,
		&lecture.TargetLanguage,
		&runID,
		&status,
		&lecture.CueCount,
		&outputPath,
		&errorMsg,
		&errorKind,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	lecture.RunID = runID.String
	lecture.Status = LectureStatus(status)
	lecture.OutputPath = outputPath.String
	lecture.ErrorMessage = errorMsg.String
	lecture.ErrorKind = errorKind.String
	lecture.UpdatedAt = parseTime(updatedRaw)
	return &lecture, nil
}
