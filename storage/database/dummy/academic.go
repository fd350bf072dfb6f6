package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/tathmini/core/academic"
)

type academicRepository struct {
	depts    *deptTable
	programs *programTable
	courses  *courseTable
	subjects *subjectTable
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{
		depts:    db.dept,
		programs: db.program,
		courses:  db.course,
		subjects: db.subject,
	}
}

func (repo *academicRepository) CreateDepartment(_ context.Context, dept academic.Department) (academic.Department, error) {
	repo.depts.Lock()
	defer repo.depts.Unlock()

	for _, d := range repo.depts.table {
		if d.Code == dept.Code {
			return academic.Department{}, academic.ErrDeptCodeExists
		}
	}
	repo.depts.table[dept.ID] = &dept
	return dept, nil
}

func (repo *academicRepository) QueryAllDepartments(_ context.Context) ([]academic.Department, error) {
	repo.depts.RLock()
	defer repo.depts.RUnlock()

	depts := make([]academic.Department, 0, len(repo.depts.table))
	for _, d := range repo.depts.table {
		depts = append(depts, *d)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].CreatedAt.Before(depts[j].CreatedAt) })
	return depts, nil
}

func (repo *academicRepository) GetDepartmentByID(_ context.Context, id string) (academic.Department, error) {
	repo.depts.RLock()
	defer repo.depts.RUnlock()

	if dept, ok := repo.depts.table[id]; ok {
		return *dept, nil
	}
	return academic.Department{}, academic.ErrDeptNotFound
}

func (repo *academicRepository) CreateProgram(_ context.Context, prog academic.Program) (academic.Program, error) {
	repo.programs.Lock()
	defer repo.programs.Unlock()

	for _, p := range repo.programs.table {
		if p.Code == prog.Code {
			return academic.Program{}, academic.ErrProgramCodeExists
		}
	}
	repo.programs.table[prog.ID] = &prog
	return prog, nil
}

func (repo *academicRepository) QueryAllPrograms(_ context.Context, deptID string) ([]academic.Program, error) {
	repo.programs.RLock()
	defer repo.programs.RUnlock()

	progs := make([]academic.Program, 0, len(repo.programs.table))
	for _, p := range repo.programs.table {
		if deptID != "" && p.DeptID != deptID {
			continue
		}
		progs = append(progs, *p)
	}
	sort.Slice(progs, func(i, j int) bool { return progs[i].CreatedAt.Before(progs[j].CreatedAt) })
	return progs, nil
}

func (repo *academicRepository) GetProgramByID(_ context.Context, id string) (academic.Program, error) {
	repo.programs.RLock()
	defer repo.programs.RUnlock()

	if prog, ok := repo.programs.table[id]; ok {
		return *prog, nil
	}
	return academic.Program{}, academic.ErrProgramNotFound
}

func (repo *academicRepository) CreateCourse(_ context.Context, crs academic.Course) (academic.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	for _, c := range repo.courses.table {
		if c.ProgramID == crs.ProgramID && c.Code == crs.Code {
			return academic.Course{}, academic.ErrCourseCodeExists
		}
	}
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *academicRepository) QueryAllCourses(_ context.Context, programID string) ([]academic.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]academic.Course, 0, len(repo.courses.table))
	for _, c := range repo.courses.table {
		if programID != "" && c.ProgramID != programID {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Semester != courses[j].Semester {
			return courses[i].Semester < courses[j].Semester
		}
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return courses, nil
}

func (repo *academicRepository) GetCourseByID(_ context.Context, id string) (academic.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *academicRepository) CreateSubject(_ context.Context, sub academic.Subject) (academic.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	for _, s := range repo.subjects.table {
		if s.CourseID == sub.CourseID && s.Code == sub.Code {
			return academic.Subject{}, academic.ErrSubjectCodeExists
		}
	}
	repo.subjects.table[sub.ID] = &sub
	return sub, nil
}

func (repo *academicRepository) QueryAllSubjects(_ context.Context, courseID string) ([]academic.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	subs := make([]academic.Subject, 0, len(repo.subjects.table))
	for _, s := range repo.subjects.table {
		if courseID != "" && s.CourseID != courseID {
			continue
		}
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.Before(subs[j].CreatedAt) })
	return subs, nil
}

func (repo *academicRepository) GetSubjectByID(_ context.Context, id string) (academic.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	if sub, ok := repo.subjects.table[id]; ok {
		return *sub, nil
	}
	return academic.Subject{}, academic.ErrSubjectNotFound
}
