package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/academic"
)

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo academicRepository) CreateDepartment(ctx context.Context, dept academic.Department) (academic.Department, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO department (id, name, code, created_at, updated_at)
		VALUES (:id, :name, :code, :created_at, :updated_at)`,
		dept,
	)
	if err != nil {
		if isUniqueViolation(err, "department_code_key") {
			return academic.Department{}, academic.ErrDeptCodeExists
		}
		return academic.Department{}, errors.Wrap(err, "inserting department")
	}
	return dept, nil
}

func (repo academicRepository) QueryAllDepartments(ctx context.Context) ([]academic.Department, error) {
	depts := make([]academic.Department, 0)
	err := repo.db.SelectContext(ctx, &depts, `SELECT * FROM department ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	return depts, nil
}

func (repo academicRepository) GetDepartmentByID(ctx context.Context, id string) (academic.Department, error) {
	var dept academic.Department
	if err := repo.db.GetContext(ctx, &dept, `SELECT * FROM department WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Department{}, academic.ErrDeptNotFound
		}
		return academic.Department{}, errors.Wrap(err, "getting department")
	}
	return dept, nil
}

func (repo academicRepository) CreateProgram(ctx context.Context, prog academic.Program) (academic.Program, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO program (id, dept_id, name, code, created_at, updated_at)
		VALUES (:id, :dept_id, :name, :code, :created_at, :updated_at)`,
		prog,
	)
	if err != nil {
		if isUniqueViolation(err, "program_code_key") {
			return academic.Program{}, academic.ErrProgramCodeExists
		}
		return academic.Program{}, errors.Wrap(err, "inserting program")
	}
	return prog, nil
}

func (repo academicRepository) QueryAllPrograms(ctx context.Context, deptID string) ([]academic.Program, error) {
	progs := make([]academic.Program, 0)
	query := `SELECT * FROM program ORDER BY created_at`
	args := make([]interface{}, 0, 1)
	if deptID != "" {
		query = `SELECT * FROM program WHERE dept_id = $1 ORDER BY created_at`
		args = append(args, deptID)
	}
	if err := repo.db.SelectContext(ctx, &progs, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying programs")
	}
	return progs, nil
}

func (repo academicRepository) GetProgramByID(ctx context.Context, id string) (academic.Program, error) {
	var prog academic.Program
	if err := repo.db.GetContext(ctx, &prog, `SELECT * FROM program WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Program{}, academic.ErrProgramNotFound
		}
		return academic.Program{}, errors.Wrap(err, "getting program")
	}
	return prog, nil
}

func (repo academicRepository) CreateCourse(ctx context.Context, crs academic.Course) (academic.Course, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, program_id, name, code, semester, batch_year, created_at, updated_at)
		VALUES (:id, :program_id, :name, :code, :semester, :batch_year, :created_at, :updated_at)`,
		crs,
	)
	if err != nil {
		if isUniqueViolation(err, "course_program_id_code_key") {
			return academic.Course{}, academic.ErrCourseCodeExists
		}
		return academic.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo academicRepository) QueryAllCourses(ctx context.Context, programID string) ([]academic.Course, error) {
	courses := make([]academic.Course, 0)
	query := `SELECT * FROM course ORDER BY semester, created_at`
	args := make([]interface{}, 0, 1)
	if programID != "" {
		query = `SELECT * FROM course WHERE program_id = $1 ORDER BY semester, created_at`
		args = append(args, programID)
	}
	if err := repo.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	var crs academic.Course
	if err := repo.db.GetContext(ctx, &crs, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Course{}, academic.ErrCourseNotFound
		}
		return academic.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo academicRepository) CreateSubject(ctx context.Context, sub academic.Subject) (academic.Subject, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO subject (id, course_id, name, code, credits, teacher_id, created_at, updated_at)
		VALUES (:id, :course_id, :name, :code, :credits, :teacher_id, :created_at, :updated_at)`,
		sub,
	)
	if err != nil {
		if isUniqueViolation(err, "subject_course_id_code_key") {
			return academic.Subject{}, academic.ErrSubjectCodeExists
		}
		return academic.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo academicRepository) QueryAllSubjects(ctx context.Context, courseID string) ([]academic.Subject, error) {
	subs := make([]academic.Subject, 0)
	query := `SELECT * FROM subject ORDER BY created_at`
	args := make([]interface{}, 0, 1)
	if courseID != "" {
		query = `SELECT * FROM subject WHERE course_id = $1 ORDER BY created_at`
		args = append(args, courseID)
	}
	if err := repo.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subs, nil
}

func (repo academicRepository) GetSubjectByID(ctx context.Context, id string) (academic.Subject, error) {
	var sub academic.Subject
	if err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Subject{}, academic.ErrSubjectNotFound
		}
		return academic.Subject{}, errors.Wrap(err, "getting subject")
	}
	return sub, nil
}
