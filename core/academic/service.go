package academic

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/user"
)

var (
	// errors
	ErrDeptNotFound    = errors.New("department not found")
	ErrProgramNotFound = errors.New("program not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrSubjectNotFound = errors.New("subject not found")

	ErrDeptCodeExists    = errors.New("department code already exists")
	ErrProgramCodeExists = errors.New("program code already exists")
	ErrCourseCodeExists  = errors.New("a course with this code already exists in this program")
	ErrSubjectCodeExists = errors.New("a subject with this code already exists in this course")

	errCannotTeach = errors.New("user cannot be assigned as a subject teacher")
)

type (
	Repository interface {
		CreateDepartment(ctx context.Context, dept Department) (Department, error)
		QueryAllDepartments(ctx context.Context) ([]Department, error)
		GetDepartmentByID(ctx context.Context, id string) (Department, error)

		CreateProgram(ctx context.Context, prog Program) (Program, error)
		// QueryAllPrograms returns all programs; deptID, when non-empty, restricts
		// the result to one department.
		QueryAllPrograms(ctx context.Context, deptID string) ([]Program, error)
		GetProgramByID(ctx context.Context, id string) (Program, error)

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context, programID string) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context, courseID string) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
	}

	Service interface {
		CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error)
		QueryAllDepartments(ctx context.Context) ([]Department, error)
		GetDepartmentByID(ctx context.Context, id string) (Department, error)

		CreateProgram(ctx context.Context, np NewProgram) (Program, error)
		QueryAllPrograms(ctx context.Context, deptID string) ([]Program, error)
		GetProgramByID(ctx context.Context, id string) (Program, error)

		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		QueryAllCourses(ctx context.Context, programID string) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)

		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		QueryAllSubjects(ctx context.Context, courseID string) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{
		repo:   repo,
		usrSvc: usrSvc,
	}
}

// fieldError wraps err as a single-field ValidationError.
func fieldError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

func (svc *service) CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error) {
	now := time.Now().UTC()
	dept, err := svc.repo.CreateDepartment(ctx, Department{
		ID:        uuid.NewString(),
		Name:      nd.Name,
		Code:      nd.Code,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrDeptCodeExists) {
			return Department{}, fieldError("code", err)
		}
		return Department{}, err
	}
	return dept, nil
}

func (svc *service) QueryAllDepartments(ctx context.Context) ([]Department, error) {
	return svc.repo.QueryAllDepartments(ctx)
}

func (svc *service) GetDepartmentByID(ctx context.Context, id string) (Department, error) {
	return svc.repo.GetDepartmentByID(ctx, id)
}

func (svc *service) CreateProgram(ctx context.Context, np NewProgram) (Program, error) {
	if _, err := svc.repo.GetDepartmentByID(ctx, np.DeptID); err != nil {
		if errors.Is(err, ErrDeptNotFound) {
			return Program{}, fieldError("dept_id", err)
		}
		return Program{}, err
	}

	now := time.Now().UTC()
	prog, err := svc.repo.CreateProgram(ctx, Program{
		ID:        uuid.NewString(),
		DeptID:    np.DeptID,
		Name:      np.Name,
		Code:      np.Code,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrProgramCodeExists) {
			return Program{}, fieldError("code", err)
		}
		return Program{}, err
	}
	return prog, nil
}

func (svc *service) QueryAllPrograms(ctx context.Context, deptID string) ([]Program, error) {
	return svc.repo.QueryAllPrograms(ctx, deptID)
}

func (svc *service) GetProgramByID(ctx context.Context, id string) (Program, error) {
	return svc.repo.GetProgramByID(ctx, id)
}

func (svc *service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetProgramByID(ctx, nc.ProgramID); err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			return Course{}, fieldError("program_id", err)
		}
		return Course{}, err
	}

	now := time.Now().UTC()
	crs, err := svc.repo.CreateCourse(ctx, Course{
		ID:        uuid.NewString(),
		ProgramID: nc.ProgramID,
		Name:      nc.Name,
		Code:      nc.Code,
		Semester:  nc.Semester,
		BatchYear: nc.BatchYear,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrCourseCodeExists) {
			return Course{}, fieldError("code", err)
		}
		return Course{}, err
	}
	return crs, nil
}

func (svc *service) QueryAllCourses(ctx context.Context, programID string) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx, programID)
}

func (svc *service) GetCourseByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetCourseByID(ctx, ns.CourseID); err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return Subject{}, fieldError("course_id", err)
		}
		return Subject{}, err
	}

	teacher, err := svc.usrSvc.GetByID(ctx, ns.TeacherID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Subject{}, fieldError("teacher_id", err)
		}
		return Subject{}, err
	}
	if !teacher.CanTeach() {
		return Subject{}, fieldError("teacher_id", errCannotTeach)
	}

	now := time.Now().UTC()
	sub, err := svc.repo.CreateSubject(ctx, Subject{
		ID:        uuid.NewString(),
		CourseID:  ns.CourseID,
		Name:      ns.Name,
		Code:      ns.Code,
		Credits:   ns.Credits,
		TeacherID: ns.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrSubjectCodeExists) {
			return Subject{}, fieldError("code", err)
		}
		return Subject{}, err
	}
	return sub, nil
}

func (svc *service) QueryAllSubjects(ctx context.Context, courseID string) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx, courseID)
}

func (svc *service) GetSubjectByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}
