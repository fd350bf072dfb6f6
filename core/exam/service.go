package exam

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("exam not found")

type (
	Repository interface {
		QueryAllExams(ctx context.Context, subjectID string) ([]Exam, error)
		GetExamByID(ctx context.Context, id string) (Exam, error)
		// CountExamQuestionsByQuestion reports how many exams pin the question.
		CountExamQuestionsByQuestion(ctx context.Context, questionID string) (int, error)
	}

	Service interface {
		QueryAll(ctx context.Context, subjectID string) ([]Exam, error)
		GetByID(ctx context.Context, id string) (Exam, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) QueryAll(ctx context.Context, subjectID string) ([]Exam, error) {
	return svc.repo.QueryAllExams(ctx, subjectID)
}

func (svc *service) GetByID(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}
