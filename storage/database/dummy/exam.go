package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/tathmini/core/exam"
)

type ExamRepository struct {
	exams *examTable
	examQ *examQuestionTable
}

var _ exam.Repository = (*ExamRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *ExamRepository {
	return &ExamRepository{exams: db.exam, examQ: db.examQ}
}

func (repo *ExamRepository) QueryAllExams(_ context.Context, subjectID string) ([]exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.exams.table))
	for _, ex := range repo.exams.table {
		if subjectID != "" && ex.SubjectID != subjectID {
			continue
		}
		exams = append(exams, *ex)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].CreatedAt.Before(exams[j].CreatedAt) })
	return exams, nil
}

func (repo *ExamRepository) GetExamByID(_ context.Context, id string) (exam.Exam, error) {
	repo.exams.RLock()
	defer repo.exams.RUnlock()

	if ex, ok := repo.exams.table[id]; ok {
		return *ex, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *ExamRepository) CountExamQuestionsByQuestion(_ context.Context, questionID string) (int, error) {
	repo.examQ.RLock()
	defer repo.examQ.RUnlock()

	var count int
	for _, eq := range repo.examQ.table {
		if eq.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}

// PinQuestion attaches a question to an exam; tests use it to exercise
// deletion guards.
func (repo *ExamRepository) PinQuestion(eq exam.ExamQuestion) {
	repo.examQ.Lock()
	defer repo.examQ.Unlock()
	repo.examQ.table[eq.ID] = &eq
}

// CreateExam exists for fixtures; the API surface has no exam authoring yet.
func (repo *ExamRepository) CreateExam(ex exam.Exam) {
	repo.exams.Lock()
	defer repo.exams.Unlock()
	repo.exams.table[ex.ID] = &ex
}
