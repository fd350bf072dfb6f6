package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/tathmini/core/question"
)

type questionRepository struct {
	questions *questionTable
}

var _ question.Repository = (*questionRepository)(nil) // interface compliance check

func NewQuestionRepository(db *DB) *questionRepository {
	return &questionRepository{questions: db.question}
}

func (repo *questionRepository) CreateQuestion(_ context.Context, q question.Question) (question.Question, error) {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	repo.questions.table[q.ID] = &q
	return q, nil
}

func hasAnyTag(q question.Question, tags []string) bool {
	for _, want := range tags {
		for _, tag := range q.Tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

func (repo *questionRepository) FilterQuestions(_ context.Context, filter question.QueryFilter) ([]question.Question, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	questions := make([]question.Question, 0, len(repo.questions.table))
	for _, q := range repo.questions.table {
		if filter.SubjectID != "" && q.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Type != "" && q.Type != filter.Type {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		if filter.COID != "" && q.COID != filter.COID {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(*q, filter.Tags) {
			continue
		}
		questions = append(questions, *q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].CreatedAt.Before(questions[j].CreatedAt) })
	return questions, nil
}

func (repo *questionRepository) GetQuestionByID(_ context.Context, id string) (question.Question, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	if q, ok := repo.questions.table[id]; ok {
		return *q, nil
	}
	return question.Question{}, question.ErrNotFound
}

func (repo *questionRepository) UpdateQuestion(_ context.Context, q question.Question) (question.Question, error) {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	if _, ok := repo.questions.table[q.ID]; !ok {
		return question.Question{}, question.ErrNotFound
	}
	repo.questions.table[q.ID] = &q
	return q, nil
}

func (repo *questionRepository) DeleteQuestion(_ context.Context, id string) error {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	delete(repo.questions.table, id)
	return nil
}

func (repo *questionRepository) CountQuestionsByCO(_ context.Context, coID string) (int, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	var count int
	for _, q := range repo.questions.table {
		if q.COID == coID {
			count++
		}
	}
	return count, nil
}
