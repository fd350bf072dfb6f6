package dummydb

import (
	"sync"

	"github.com/trezcool/tathmini/core/academic"
	"github.com/trezcool/tathmini/core/exam"
	"github.com/trezcool/tathmini/core/outcome"
	"github.com/trezcool/tathmini/core/question"
	"github.com/trezcool/tathmini/core/user"
)

// DB is an in-memory store used in tests and local hacking. Each table guards
// its map with its own lock; check-then-insert sequences hold the write lock
// for their whole duration, which is what makes uniqueness checks safe here.
type (
	DB struct {
		user     *userTable
		setup    *setupTable
		dept     *deptTable
		program  *programTable
		course   *courseTable
		subject  *subjectTable
		co       *coTable
		po       *poTable
		mapping  *mappingTable
		question *questionTable
		exam     *examTable
		examQ    *examQuestionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	setupTable struct {
		sync.RWMutex
		table map[string]*user.SetupStatus
	}

	deptTable struct {
		sync.RWMutex
		table map[string]*academic.Department
	}

	programTable struct {
		sync.RWMutex
		table map[string]*academic.Program
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*academic.Course
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*academic.Subject
	}

	coTable struct {
		sync.RWMutex
		table map[string]*outcome.CO
	}

	poTable struct {
		sync.RWMutex
		table map[string]*outcome.PO
	}

	mappingTable struct {
		sync.RWMutex
		table map[string]*outcome.COPOMapping
	}

	questionTable struct {
		sync.RWMutex
		table map[string]*question.Question
	}

	examTable struct {
		sync.RWMutex
		table map[string]*exam.Exam
	}

	examQuestionTable struct {
		sync.RWMutex
		table map[string]*exam.ExamQuestion
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		setup:    &setupTable{table: make(map[string]*user.SetupStatus)},
		dept:     &deptTable{table: make(map[string]*academic.Department)},
		program:  &programTable{table: make(map[string]*academic.Program)},
		course:   &courseTable{table: make(map[string]*academic.Course)},
		subject:  &subjectTable{table: make(map[string]*academic.Subject)},
		co:       &coTable{table: make(map[string]*outcome.CO)},
		po:       &poTable{table: make(map[string]*outcome.PO)},
		mapping:  &mappingTable{table: make(map[string]*outcome.COPOMapping)},
		question: &questionTable{table: make(map[string]*question.Question)},
		exam:     &examTable{table: make(map[string]*exam.Exam)},
		examQ:    &examQuestionTable{table: make(map[string]*exam.ExamQuestion)},
	}
	return db, nil
}
