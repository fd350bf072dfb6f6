package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/tathmini/apps/api/echo"
	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/academic"
	"github.com/trezcool/tathmini/core/exam"
	"github.com/trezcool/tathmini/core/outcome"
	"github.com/trezcool/tathmini/core/question"
	"github.com/trezcool/tathmini/core/user"
	appfs "github.com/trezcool/tathmini/fs"
	broadcastsvc "github.com/trezcool/tathmini/services/broadcast"
	emailsvc "github.com/trezcool/tathmini/services/email"
	dummydb "github.com/trezcool/tathmini/storage/database/dummy"
)

var (
	conf *core.Config

	usrRepo      user.Repository
	academicRepo academic.Repository
	outcomeRepo  outcome.Repository
	questionRepo question.Repository
	examRepo     *dummydb.ExamRepository
	hub          *broadcastsvc.Hub

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// testLogger satisfies core.Logger without reporting anywhere.
type testLogger struct {
	std *log.Logger
}

func (l testLogger) Enable(bool) {}
func (l testLogger) log(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}
func (l testLogger) Debug(msg string, args ...interface{}) { l.log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.log(msg, args); l.std.Fatal(msg) }

func setup(t *testing.T) Server {
	t.Helper()

	conf = core.NewTestConfig()
	logger := testLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	academicRepo = dummydb.NewAcademicRepository(db)
	outcomeRepo = dummydb.NewOutcomeRepository(db)
	qRepo := dummydb.NewQuestionRepository(db)
	eRepo := dummydb.NewExamRepository(db)
	questionRepo = qRepo
	examRepo = eRepo

	// set up services
	mailSvc := emailsvc.NewConsoleService(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	academicSvc := academic.NewService(academicRepo, usrSvc)
	outcomeSvc := outcome.NewService(outcomeRepo, academicSvc, qRepo)
	questionSvc := question.NewService(qRepo, academicSvc, outcomeSvc, eRepo)
	examSvc := exam.NewService(eRepo)
	hub = broadcastsvc.NewHub()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	outcome.InitValidators(validate, translator)
	question.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, logger)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			AcademicSvc: academicSvc,
			OutcomeSvc:  outcomeSvc,
			QuestionSvc: questionSvc,
			ExamSvc:     examSvc,
			Broadcaster: hub,
			Validate:    validate,
			Translator:  translator,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	access, _, err := GenerateTokenPair(conf, usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return access
}

func getRefreshToken(t *testing.T, usr user.User) string {
	t.Helper()
	_, refresh, err := GenerateTokenPair(conf, usr)
	if err != nil {
		t.Fatalf("getRefreshToken() failed: %v", err)
	}
	return refresh
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	if objs == nil {
		objs = []interface{}{} // handlers return [] for empty lists, never null
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// Fixtures

func createDepartment(t *testing.T, name, code string) academic.Department {
	t.Helper()
	now := time.Now().UTC()
	dept, err := academicRepo.CreateDepartment(context.Background(), academic.Department{
		ID: uuid.NewString(), Name: name, Code: code, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createDepartment() failed: %v", err)
	}
	return dept
}

func createProgram(t *testing.T, deptID, name, code string) academic.Program {
	t.Helper()
	now := time.Now().UTC()
	prog, err := academicRepo.CreateProgram(context.Background(), academic.Program{
		ID: uuid.NewString(), DeptID: deptID, Name: name, Code: code, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createProgram() failed: %v", err)
	}
	return prog
}

func createCourse(t *testing.T, programID, name, code string, semester int) academic.Course {
	t.Helper()
	now := time.Now().UTC()
	crs, err := academicRepo.CreateCourse(context.Background(), academic.Course{
		ID: uuid.NewString(), ProgramID: programID, Name: name, Code: code,
		Semester: semester, BatchYear: 2024, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func createSubject(t *testing.T, courseID, name, code, teacherID string) academic.Subject {
	t.Helper()
	now := time.Now().UTC()
	sub, err := academicRepo.CreateSubject(context.Background(), academic.Subject{
		ID: uuid.NewString(), CourseID: courseID, Name: name, Code: code,
		Credits: 4, TeacherID: teacherID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return sub
}

func createCO(t *testing.T, subjectID, code string) outcome.CO {
	t.Helper()
	now := time.Now().UTC()
	co, err := outcomeRepo.CreateCO(context.Background(), outcome.CO{
		ID: uuid.NewString(), SubjectID: subjectID, Code: code,
		Description: "Apply graph algorithms to real problems", BloomLevel: outcome.BloomApply,
		TargetLevel: 0.6, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createCO() failed: %v", err)
	}
	return co
}

func createPO(t *testing.T, programID, code string) outcome.PO {
	t.Helper()
	now := time.Now().UTC()
	po, err := outcomeRepo.CreatePO(context.Background(), outcome.PO{
		ID: uuid.NewString(), ProgramID: programID, Code: code,
		Description: "Engineering knowledge and problem analysis", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createPO() failed: %v", err)
	}
	return po
}

func createMapping(t *testing.T, coID, poID string, weight int) outcome.COPOMapping {
	t.Helper()
	m, err := outcomeRepo.CreateMapping(context.Background(), outcome.COPOMapping{
		ID: uuid.NewString(), COID: coID, POID: poID, Weight: weight, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createMapping() failed: %v", err)
	}
	return m
}

func createQuestion(t *testing.T, subjectID, coID string) question.Question {
	t.Helper()
	now := time.Now().UTC()
	q, err := questionRepo.CreateQuestion(context.Background(), question.Question{
		ID: uuid.NewString(), SubjectID: subjectID, Type: question.TypeMCQ,
		Text: "Which traversal visits children before siblings?",
		Options: question.Options{
			"a": "Breadth-first search",
			"b": "Depth-first search",
		},
		CorrectKey: question.ChoiceKey("b"),
		MaxMarks:   2, COID: coID, Difficulty: question.DifficultyEasy,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createQuestion() failed: %v", err)
	}
	return q
}
