package exam

import (
	"time"

	"github.com/trezcool/tathmini/core/question"
)

type ExamStatus string

const (
	StatusDraft     ExamStatus = "draft"
	StatusScheduled ExamStatus = "scheduled"
	StatusLive      ExamStatus = "live"
	StatusEnded     ExamStatus = "ended"
	StatusGraded    ExamStatus = "graded"
)

func (s ExamStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusLive, StatusEnded, StatusGraded:
		return true
	}
	return false
}

type AttemptStatus string

const (
	AttemptNotStarted    AttemptStatus = "not_started"
	AttemptActive        AttemptStatus = "active"
	AttemptSubmitted     AttemptStatus = "submitted"
	AttemptAutoSubmitted AttemptStatus = "auto_submitted"
	AttemptForReview     AttemptStatus = "for_review"
	AttemptGraded        AttemptStatus = "graded"
	AttemptInvalidated   AttemptStatus = "invalidated"
)

type Exam struct {
	ID              string                    `json:"id" db:"id"`
	SubjectID       string                    `json:"subject_id" db:"subject_id"`
	Title           string                    `json:"title" db:"title"`
	Type            string                    `json:"type" db:"type"` // quiz, midsem, endsem, assignment, practical
	DurationSec     int                       `json:"duration_sec" db:"duration_sec"`
	JoinWindowSec   int                       `json:"join_window_sec" db:"join_window_sec"`
	TotalMarks      float64                   `json:"total_marks" db:"total_marks"`
	NegativeMarking *question.NegativeMarking `json:"negative_marking_default,omitempty" db:"negative_marking_default"`
	Randomized      string                    `json:"randomized" db:"randomized"`         // none, question_order, option_order, both
	ReentryPolicy   string                    `json:"reentry_policy" db:"reentry_policy"` // block, allow_once, allow_multiple
	CreatedBy       string                    `json:"created_by" db:"created_by"`
	Status          ExamStatus                `json:"status" db:"status"`
	CreatedAt       time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at" db:"updated_at"`
}

// ExamQuestion pins a question (and optionally a marks override) at a fixed
// position in an exam.
type ExamQuestion struct {
	ID            string    `json:"id" db:"id"`
	ExamID        string    `json:"exam_id" db:"exam_id"`
	QuestionID    string    `json:"question_id" db:"question_id"`
	MarksOverride *float64  `json:"marks_override,omitempty" db:"marks_override"`
	OrderIndex    int       `json:"order_index" db:"order_index"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ExamSession is one live run of an exam.
type ExamSession struct {
	ID        string     `json:"id" db:"id"`
	ExamID    string     `json:"exam_id" db:"exam_id"`
	Status    string     `json:"status" db:"status"` // scheduled, live, ended
	StartTime *time.Time `json:"start_time,omitempty" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`
	CreatedBy string     `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Response is a student's answer to one question within an attempt.
type Response struct {
	ID              string                 `json:"id" db:"id"`
	AttemptID       string                 `json:"attempt_id" db:"attempt_id"`
	QuestionID      string                 `json:"question_id" db:"question_id"`
	AnswerPayload   map[string]interface{} `json:"answer_payload" db:"answer_payload"`
	AutosaveTS      *time.Time             `json:"autosave_ts,omitempty" db:"autosave_ts"`
	FinalSubmitTS   *time.Time             `json:"final_submit_ts,omitempty" db:"final_submit_ts"`
	ClientLatencyMS *int                   `json:"client_latency_ms,omitempty" db:"client_latency_ms"`
	CreatedAt       time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" db:"updated_at"`
}

// Score is the grading record of a response. ScorerType is one of rule, ai,
// human or hybrid.
type Score struct {
	ID           string     `json:"id" db:"id"`
	ResponseID   string     `json:"response_id" db:"response_id"`
	AIScore      *float64   `json:"ai_score,omitempty" db:"ai_score"`
	HumanScore   *float64   `json:"human_score,omitempty" db:"human_score"`
	FinalScore   float64    `json:"final_score" db:"final_score"`
	ScorerType   string     `json:"scorer_type" db:"scorer_type"`
	Explanation  *string    `json:"explanation,omitempty" db:"explanation"`
	Confidence   *float64   `json:"confidence,omitempty" db:"confidence"`
	Version      int        `json:"version" db:"version"`
	OverriddenBy *string    `json:"overridden_by,omitempty" db:"overridden_by"`
	OverriddenAt *time.Time `json:"overridden_at,omitempty" db:"overridden_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type StudentExamAttempt struct {
	ID              string        `json:"id" db:"id"`
	SessionID       string        `json:"session_id" db:"session_id"`
	StudentID       string        `json:"student_id" db:"student_id"`
	Status          AttemptStatus `json:"status" db:"status"`
	JoinedAt        *time.Time    `json:"joined_at,omitempty" db:"joined_at"`
	EndedAt         *time.Time    `json:"ended_at,omitempty" db:"ended_at"`
	TotalScore      *float64      `json:"total_score,omitempty" db:"total_score"`
	AIScoredAt      *time.Time    `json:"ai_scored_at,omitempty" db:"ai_scored_at"`
	MalpracticeRisk float64       `json:"malpractice_risk" db:"malpractice_risk"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}
