package ledger

import "time"

// RunStatus is the lifecycle state of a translate invocation.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// LectureStatus is the outcome recorded for one lecture.
type LectureStatus string

const (
	LectureTranslated LectureStatus = "translated"
	LectureSkipped    LectureStatus = "skipped"
	LectureFailed     LectureStatus = "failed"
)

// Run is one translate invocation for a course.
type Run struct {
	ID             string     `json:"id"`
	Course         string     `json:"course"`
	TargetLanguage string     `json:"target_language"`
	Provider       string     `json:"provider"`
	Status         RunStatus  `json:"status"`
	Total          int        `json:"total"`
	Translated     int        `json:"translated"`
	Skipped        int        `json:"skipped"`
	Failed         int        `json:"failed"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// Duration returns the elapsed run time, measured to now for running runs.
func (r Run) Duration() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}

// RunCounts summarizes the lecture outcomes of a finished run.
type RunCounts struct {
	Total      int
	Translated int
	Skipped    int
	Failed     int
}

// Lecture is the latest outcome for a course member in one target language.
type Lecture struct {
	Course         string        `json:"course"`
	Member         string        `json:"member"`
	TargetLanguage string        `json:"target_language"`
	RunID          string        `json:"run_id,omitempty"`
	Status         LectureStatus `json:"status"`
	CueCount       int           `json:"cue_count"`
	OutputPath     string        `json:"output_path,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	ErrorKind      string        `json:"error_kind,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// CourseSummary aggregates lecture outcomes per course and language.
type CourseSummary struct {
	Course         string    `json:"course"`
	TargetLanguage string    `json:"target_language"`
	Translated     int       `json:"translated"`
	Failed         int       `json:"failed"`
	Skipped        int       `json:"skipped"`
	LastUpdated    time.Time `json:"last_updated"`
}
