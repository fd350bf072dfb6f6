package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/exam"
)

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

const examCols = `id, subject_id, title, type, duration_sec, join_window_sec, total_marks,
	negative_marking_default, randomized, reentry_policy, created_by, status, created_at, updated_at`

func scanExam(row interface{ Scan(...interface{}) error }) (exam.Exam, error) {
	var (
		ex         exam.Exam
		negMarking []byte
	)
	err := row.Scan(
		&ex.ID, &ex.SubjectID, &ex.Title, &ex.Type, &ex.DurationSec, &ex.JoinWindowSec,
		&ex.TotalMarks, &negMarking, &ex.Randomized, &ex.ReentryPolicy, &ex.CreatedBy,
		&ex.Status, &ex.CreatedAt, &ex.UpdatedAt,
	)
	if err != nil {
		return exam.Exam{}, err
	}
	if negMarking != nil {
		if err = json.Unmarshal(negMarking, &ex.NegativeMarking); err != nil {
			return exam.Exam{}, errors.Wrap(err, "decoding negative marking")
		}
	}
	return ex, nil
}

func (repo examRepository) QueryAllExams(ctx context.Context, subjectID string) ([]exam.Exam, error) {
	query := `SELECT ` + examCols + ` FROM exam ORDER BY created_at`
	args := make([]interface{}, 0, 1)
	if subjectID != "" {
		query = `SELECT ` + examCols + ` FROM exam WHERE subject_id = $1 ORDER BY created_at`
		args = append(args, subjectID)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	defer func() { _ = rows.Close() }()

	exams := make([]exam.Exam, 0)
	for rows.Next() {
		ex, err := scanExam(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning exam")
		}
		exams = append(exams, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	return exams, nil
}

func (repo examRepository) GetExamByID(ctx context.Context, id string) (exam.Exam, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+examCols+` FROM exam WHERE id = $1`, id)
	ex, err := scanExam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam.Exam{}, exam.ErrNotFound
		}
		return exam.Exam{}, errors.Wrap(err, "getting exam")
	}
	return ex, nil
}

func (repo examRepository) CountExamQuestionsByQuestion(ctx context.Context, questionID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM exam_question WHERE question_id = $1`, questionID)
	if err != nil {
		return 0, errors.Wrap(err, "counting exam questions")
	}
	return count, nil
}
