package outcome

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/academic"
	"github.com/trezcool/tathmini/core/user"
)

var (
	// errors
	ErrCONotFound      = errors.New("course outcome not found")
	ErrPONotFound      = errors.New("program outcome not found")
	ErrMappingNotFound = errors.New("mapping not found")

	ErrCOCodeExists  = errors.New("a course outcome with this code already exists for this subject")
	ErrPOCodeExists  = errors.New("a program outcome with this code already exists for this program")
	ErrMappingExists = errors.New("this course outcome is already mapped to this program outcome")
	ErrCOInUse       = errors.New("course outcome is referenced by questions or mappings and cannot be deleted")
)

type (
	// QuestionRefCounter reports how many questions reference a course outcome.
	// It is implemented by the question storage.
	QuestionRefCounter interface {
		CountQuestionsByCO(ctx context.Context, coID string) (int, error)
	}

	Repository interface {
		CreateCO(ctx context.Context, co CO) (CO, error)
		QueryAllCOs(ctx context.Context, subjectID string) ([]CO, error)
		GetCOByID(ctx context.Context, id string) (CO, error)
		UpdateCO(ctx context.Context, co CO) (CO, error)
		DeleteCO(ctx context.Context, id string) error
		CountMappingsByCO(ctx context.Context, coID string) (int, error)

		CreatePO(ctx context.Context, po PO) (PO, error)
		QueryAllPOs(ctx context.Context, programID string) ([]PO, error)
		GetPOByID(ctx context.Context, id string) (PO, error)

		CreateMapping(ctx context.Context, m COPOMapping) (COPOMapping, error)
		QueryAllMappings(ctx context.Context, coID string) ([]COPOMapping, error)
		GetMappingByID(ctx context.Context, id string) (COPOMapping, error)
		UpdateMapping(ctx context.Context, m COPOMapping) (COPOMapping, error)
		DeleteMapping(ctx context.Context, id string) error
	}

	Service interface {
		QueryAllCOs(ctx context.Context, subjectID string) ([]CO, error)
		CreateCO(ctx context.Context, actor user.User, subjectID string, nc NewCO) (CO, error)
		GetCOByID(ctx context.Context, id string) (CO, error)
		UpdateCO(ctx context.Context, actor user.User, id string, uc UpdateCO) (CO, error)
		DeleteCO(ctx context.Context, actor user.User, id string) error

		QueryAllPOs(ctx context.Context, programID string) ([]PO, error)
		CreatePO(ctx context.Context, programID string, np NewPO) (PO, error)
		GetPOByID(ctx context.Context, id string) (PO, error)

		QueryAllMappings(ctx context.Context, coID string) ([]COPOMapping, error)
		CreateMapping(ctx context.Context, actor user.User, coID string, nm NewMapping) (COPOMapping, error)
		UpdateMappingWeight(ctx context.Context, actor user.User, id string, um UpdateMapping) (COPOMapping, error)
		DeleteMapping(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo        Repository
		academicSvc academic.Service
		questions   QuestionRefCounter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, academicSvc academic.Service, questions QuestionRefCounter) Service {
	return &service{
		repo:        repo,
		academicSvc: academicSvc,
		questions:   questions,
	}
}

func fieldError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// checkSubjectOwnership fetches the subject and checks that actor may mutate
// content under it.
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

func (svc *service) QueryAllCOs(ctx context.Context, subjectID string) ([]CO, error) {
	if _, err := svc.academicSvc.GetSubjectByID(ctx, subjectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllCOs(ctx, subjectID)
}

func (svc *service) CreateCO(ctx context.Context, actor user.User, subjectID string, nc NewCO) (CO, error) {
	if _, err := svc.checkSubjectOwnership(ctx, actor, subjectID); err != nil {
		return CO{}, err
	}

	now := time.Now().UTC()
	co, err := svc.repo.CreateCO(ctx, CO{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		Code:        nc.Code,
		Description: nc.Description,
		BloomLevel:  nc.BloomLevel,
		TargetLevel: nc.TargetLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, ErrCOCodeExists) {
			return CO{}, fieldError("code", err)
		}
		return CO{}, err
	}
	return co, nil
}

func (svc *service) GetCOByID(ctx context.Context, id string) (CO, error) {
	return svc.repo.GetCOByID(ctx, id)
}

// UpdateCO replaces the mutable CO fields; id and subject assignment are fixed.
func (svc *service) UpdateCO(ctx context.Context, actor user.User, id string, uc UpdateCO) (CO, error) {
	co, err := svc.repo.GetCOByID(ctx, id)
	if err != nil {
		return CO{}, err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, co.SubjectID); err != nil {
		return CO{}, err
	}

	co.Code = uc.Code
	co.Description = uc.Description
	co.BloomLevel = uc.BloomLevel
	co.TargetLevel = uc.TargetLevel
	co.UpdatedAt = time.Now().UTC()

	co, err = svc.repo.UpdateCO(ctx, co)
	if err != nil {
		if errors.Is(err, ErrCOCodeExists) {
			return CO{}, fieldError("code", err)
		}
		return CO{}, err
	}
	return co, nil
}

// DeleteCO removes a CO once nothing references it: no question and no
// mapping may point at it.
func (svc *service) DeleteCO(ctx context.Context, actor user.User, id string) error {
	co, err := svc.repo.GetCOByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, co.SubjectID); err != nil {
		return err
	}

	if count, err := svc.questions.CountQuestionsByCO(ctx, id); err != nil {
		return err
	} else if count > 0 {
		return core.NewValidationError(ErrCOInUse)
	}
	if count, err := svc.repo.CountMappingsByCO(ctx, id); err != nil {
		return err
	} else if count > 0 {
		return core.NewValidationError(ErrCOInUse)
	}
	return svc.repo.DeleteCO(ctx, id)
}

func (svc *service) QueryAllPOs(ctx context.Context, programID string) ([]PO, error) {
	if _, err := svc.academicSvc.GetProgramByID(ctx, programID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllPOs(ctx, programID)
}

func (svc *service) CreatePO(ctx context.Context, programID string, np NewPO) (PO, error) {
	if _, err := svc.academicSvc.GetProgramByID(ctx, programID); err != nil {
		return PO{}, err
	}

	now := time.Now().UTC()
	po, err := svc.repo.CreatePO(ctx, PO{
		ID:          uuid.NewString(),
		ProgramID:   programID,
		Code:        np.Code,
		Description: np.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, ErrPOCodeExists) {
			return PO{}, fieldError("code", err)
		}
		return PO{}, err
	}
	return po, nil
}

func (svc *service) GetPOByID(ctx context.Context, id string) (PO, error) {
	return svc.repo.GetPOByID(ctx, id)
}

func (svc *service) QueryAllMappings(ctx context.Context, coID string) ([]COPOMapping, error) {
	if _, err := svc.repo.GetCOByID(ctx, coID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllMappings(ctx, coID)
}

func (svc *service) CreateMapping(ctx context.Context, actor user.User, coID string, nm NewMapping) (COPOMapping, error) {
	co, err := svc.repo.GetCOByID(ctx, coID)
	if err != nil {
		return COPOMapping{}, err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, co.SubjectID); err != nil {
		return COPOMapping{}, err
	}
	if _, err = svc.repo.GetPOByID(ctx, nm.POID); err != nil {
		return COPOMapping{}, err
	}

	m, err := svc.repo.CreateMapping(ctx, COPOMapping{
		ID:        uuid.NewString(),
		COID:      coID,
		POID:      nm.POID,
		Weight:    nm.Weight,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrMappingExists) {
			return COPOMapping{}, core.NewValidationError(err)
		}
		return COPOMapping{}, err
	}
	return m, nil
}

func (svc *service) checkMappingOwnership(ctx context.Context, actor user.User, id string) (COPOMapping, error) {
	m, err := svc.repo.GetMappingByID(ctx, id)
	if err != nil {
		return COPOMapping{}, err
	}
	co, err := svc.repo.GetCOByID(ctx, m.COID)
	if err != nil {
		return COPOMapping{}, err
	}
	if _, err = svc.checkSubjectOwnership(ctx, actor, co.SubjectID); err != nil {
		return COPOMapping{}, err
	}
	return m, nil
}

// UpdateMappingWeight changes the correlation weight; the mapped pair itself
// is immutable, a different pair requires a new mapping.
func (svc *service) UpdateMappingWeight(ctx context.Context, actor user.User, id string, um UpdateMapping) (COPOMapping, error) {
	m, err := svc.checkMappingOwnership(ctx, actor, id)
	if err != nil {
		return COPOMapping{}, err
	}
	m.Weight = um.Weight
	return svc.repo.UpdateMapping(ctx, m)
}

func (svc *service) DeleteMapping(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.checkMappingOwnership(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteMapping(ctx, id)
}
