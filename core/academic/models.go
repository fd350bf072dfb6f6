package academic

import (
	"time"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/user"
)

type Department struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Program struct {
	ID        string    `json:"id" db:"id"`
	DeptID    string    `json:"dept_id" db:"dept_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Course struct {
	ID        string    `json:"id" db:"id"`
	ProgramID string    `json:"program_id" db:"program_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Semester  int       `json:"semester" db:"semester"`
	BatchYear int       `json:"batch_year" db:"batch_year"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Subject struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Credits   float64   `json:"credits" db:"credits"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether usr may mutate content scoped to this subject.
func (s Subject) OwnedBy(usr user.User) bool {
	return usr.Owns(s.TeacherID)
}

type NewDepartment struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Code string `json:"code" validate:"required,min=2,max=20"`
}

func (nd *NewDepartment) Clean() {
	nd.Name = core.CleanString(nd.Name)
	nd.Code = core.CleanString(nd.Code)
}

type NewProgram struct {
	DeptID string `json:"dept_id" validate:"required"`
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Code   string `json:"code" validate:"required,min=2,max=20"`
}

func (np *NewProgram) Clean() {
	np.Name = core.CleanString(np.Name)
	np.Code = core.CleanString(np.Code)
}

type NewCourse struct {
	ProgramID string `json:"program_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Code      string `json:"code" validate:"required,min=2,max=20"`
	Semester  int    `json:"semester" validate:"required,gte=1,lte=10"`
	BatchYear int    `json:"batch_year" validate:"required,gte=2020"`
}

func (nc *NewCourse) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
}

type NewSubject struct {
	CourseID  string  `json:"course_id" validate:"required"`
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Code      string  `json:"code" validate:"required,min=2,max=20"`
	Credits   float64 `json:"credits" validate:"gte=0,lte=10"`
	TeacherID string  `json:"teacher_id" validate:"required"`
}

func (ns *NewSubject) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
}
