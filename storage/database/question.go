package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/question"
)

type questionRepository struct {
	db *sqlx.DB
}

var _ question.Repository = (*questionRepository)(nil) // interface compliance check

func NewQuestionRepository(db *sqlx.DB) *questionRepository {
	return &questionRepository{db: db}
}

const questionCols = `id, subject_id, type, text, options, correct_key, max_marks, co_id, po_ids,
	difficulty, tags, negative_marking, partial_scoring, version, created_at, updated_at`

// scanQuestion scans one question row. Array and JSONB columns cannot go
// through StructScan, so rows are scanned by hand.
func scanQuestion(row interface{ Scan(...interface{}) error }) (question.Question, error) {
	var (
		q                       question.Question
		negMarking, partScoring []byte
	)
	err := row.Scan(
		&q.ID, &q.SubjectID, &q.Type, &q.Text, &q.Options, &q.CorrectKey, &q.MaxMarks, &q.COID,
		pq.Array(&q.POIDs), &q.Difficulty, pq.Array(&q.Tags), &negMarking, &partScoring,
		&q.Version, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return question.Question{}, err
	}
	if negMarking != nil {
		if err = json.Unmarshal(negMarking, &q.NegativeMarking); err != nil {
			return question.Question{}, errors.Wrap(err, "decoding negative marking")
		}
	}
	if partScoring != nil {
		if err = json.Unmarshal(partScoring, &q.PartialScoring); err != nil {
			return question.Question{}, errors.Wrap(err, "decoding partial scoring")
		}
	}
	return q, nil
}

func (repo questionRepository) CreateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO question (`+questionCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		q.ID, q.SubjectID, q.Type, q.Text, q.Options, q.CorrectKey, q.MaxMarks, q.COID,
		pq.Array(q.POIDs), q.Difficulty, pq.Array(q.Tags), q.NegativeMarking, q.PartialScoring,
		q.Version, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return question.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}

func (repo questionRepository) FilterQuestions(ctx context.Context, filter question.QueryFilter) ([]question.Question, error) {
	var (
		conds []string
		args  []interface{}
	)
	addCond := func(col string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if filter.SubjectID != "" {
		addCond("subject_id", filter.SubjectID)
	}
	if filter.Type != "" {
		addCond("type", filter.Type)
	}
	if filter.Difficulty != "" {
		addCond("difficulty", filter.Difficulty)
	}
	if filter.COID != "" {
		addCond("co_id", filter.COID)
	}
	if len(filter.Tags) > 0 {
		// overlap: any requested tag matches
		args = append(args, pq.Array(filter.Tags))
		conds = append(conds, fmt.Sprintf("tags && $%d", len(args)))
	}

	query := `SELECT ` + questionCols + ` FROM question`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	defer func() { _ = rows.Close() }()

	questions := make([]question.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning question")
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	return questions, nil
}

func (repo questionRepository) GetQuestionByID(ctx context.Context, id string) (question.Question, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM question WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, errors.Wrap(err, "getting question")
	}
	return q, nil
}

func (repo questionRepository) UpdateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE question
		SET type = $1, text = $2, options = $3, correct_key = $4, max_marks = $5, co_id = $6,
		    po_ids = $7, difficulty = $8, tags = $9, negative_marking = $10, partial_scoring = $11,
		    version = $12, updated_at = $13
		WHERE id = $14`,
		q.Type, q.Text, q.Options, q.CorrectKey, q.MaxMarks, q.COID,
		pq.Array(q.POIDs), q.Difficulty, pq.Array(q.Tags), q.NegativeMarking, q.PartialScoring,
		q.Version, q.UpdatedAt, q.ID,
	)
	if err != nil {
		return question.Question{}, errors.Wrap(err, "updating question")
	}
	return q, nil
}

func (repo questionRepository) DeleteQuestion(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	return errors.Wrap(err, "deleting question")
}

// CountQuestionsByCO reports how many questions reference the course outcome.
func (repo questionRepository) CountQuestionsByCO(ctx context.Context, coID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM question WHERE co_id = $1`, coID)
	if err != nil {
		return 0, errors.Wrap(err, "counting questions")
	}
	return count, nil
}
