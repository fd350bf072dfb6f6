package question

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/academic"
	"github.com/trezcool/tathmini/core/outcome"
	"github.com/trezcool/tathmini/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("question not found")
	ErrInUse    = errors.New("question is referenced by an exam and cannot be deleted")

	errCOWrongSubject = errors.New("course outcome does not belong to this subject")
)

type (
	// ExamRefCounter reports how many exams reference a question.
	// It is implemented by the exam storage.
	ExamRefCounter interface {
		CountExamQuestionsByQuestion(ctx context.Context, questionID string) (int, error)
	}

	Repository interface {
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// FilterQuestions applies an AND operation on available QueryFilter fields.
		FilterQuestions(ctx context.Context, filter QueryFilter) ([]Question, error)
		GetQuestionByID(ctx context.Context, id string) (Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestion(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, subjectID string, nq NewQuestion) (Question, error)
		Filter(ctx context.Context, actor user.User, subjectID string, filter QueryFilter) ([]Question, error)
		GetByID(ctx context.Context, actor user.User, id string) (Question, error)
		Update(ctx context.Context, actor user.User, id string, uq UpdateQuestion) (Question, error)
		Delete(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo        Repository
		academicSvc academic.Service
		outcomeSvc  outcome.Service
		exams       ExamRefCounter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, academicSvc academic.Service, outcomeSvc outcome.Service, exams ExamRefCounter) Service {
	return &service{
		repo:        repo,
		academicSvc: academicSvc,
		outcomeSvc:  outcomeSvc,
		exams:       exams,
	}
}

func fieldError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// checkCO verifies that coID exists and is declared on subjectID.
func (svc *service) checkCO(ctx context.Context, coID, subjectID string) error {
	co, err := svc.outcomeSvc.GetCOByID(ctx, coID)
	if err != nil {
		if errors.Is(err, outcome.ErrCONotFound) {
			return fieldError("co_id", err)
		}
		return err
	}
	if co.SubjectID != subjectID {
		return fieldError("co_id", errCOWrongSubject)
	}
	return nil
}

// checkPOs verifies that every referenced program outcome exists.
func (svc *service) checkPOs(ctx context.Context, poIDs []string) error {
	for _, poID := range poIDs {
		if _, err := svc.outcomeSvc.GetPOByID(ctx, poID); err != nil {
			if errors.Is(err, outcome.ErrPONotFound) {
				return fieldError("po_ids", err)
			}
			return err
		}
	}
	return nil
}

// checkSubjectOwnership fetches the subject and checks that actor may mutate
// its question bank.
func (svc *service) checkSubjectOwnership(ctx context.Context, actor user.User, subjectID string) (academic.Subject, error) {
	sub, err := svc.academicSvc.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return academic.Subject{}, err
	}
	if !sub.OwnedBy(actor) {
		return academic.Subject{}, core.ErrPermissionDenied
	}
	return sub, nil
}

func (svc *service) Create(ctx context.Context, actor user.User, subjectID string, nq NewQuestion) (Question, error) {
	if _, err := svc.checkSubjectOwnership(ctx, actor, subjectID); err != nil {
		return Question{}, err
	}
	if err := svc.checkCO(ctx, nq.COID, subjectID); err != nil {
		return Question{}, err
	}
	if err := svc.checkPOs(ctx, nq.POIDs); err != nil {
		return Question{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateQuestion(ctx, Question{
		ID:              uuid.NewString(),
		SubjectID:       subjectID,
		Type:            nq.Type,
		Text:            nq.Text,
		Options:         nq.Options,
		CorrectKey:      nq.CorrectKey,
		MaxMarks:        nq.MaxMarks,
		COID:            nq.COID,
		POIDs:           nq.POIDs,
		Difficulty:      nq.Difficulty,
		Tags:            nq.Tags,
		NegativeMarking: nq.NegativeMarking,
		PartialScoring:  nq.PartialScoring,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// Filter lists a subject's question bank; the bank is only visible to its
// owning teacher and admins.
func (svc *service) Filter(ctx context.Context, actor user.User, subjectID string, filter QueryFilter) ([]Question, error) {
	if _, err := svc.checkSubjectOwnership(ctx, actor, subjectID); err != nil {
		return nil, err
	}
	filter.SubjectID = subjectID
	return svc.repo.FilterQuestions(ctx, filter)
}

// GetByID fetches a question; the bank is private, so the actor must own the
// question's subject.
func (svc *service) GetByID(ctx context.Context, actor user.User, id string) (Question, error) {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, q.SubjectID); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Update replaces the mutable question fields and bumps the version. The
// owning subject never changes; a new CO must still belong to it.
func (svc *service) Update(ctx context.Context, actor user.User, id string, uq UpdateQuestion) (Question, error) {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, q.SubjectID); err != nil {
		return Question{}, err
	}
	if err = svc.checkCO(ctx, uq.COID, q.SubjectID); err != nil {
		return Question{}, err
	}
	if err = svc.checkPOs(ctx, uq.POIDs); err != nil {
		return Question{}, err
	}

	q.Type = uq.Type
	q.Text = uq.Text
	q.Options = uq.Options
	q.CorrectKey = uq.CorrectKey
	q.MaxMarks = uq.MaxMarks
	q.COID = uq.COID
	q.POIDs = uq.POIDs
	q.Difficulty = uq.Difficulty
	q.Tags = uq.Tags
	q.NegativeMarking = uq.NegativeMarking
	q.PartialScoring = uq.PartialScoring
	q.Version++
	q.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateQuestion(ctx, q)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, q.SubjectID); err != nil {
		return err
	}

	if count, err := svc.exams.CountExamQuestionsByQuestion(ctx, id); err != nil {
		return err
	} else if count > 0 {
		return core.NewValidationError(ErrInUse)
	}
	return svc.repo.DeleteQuestion(ctx, id)
}
