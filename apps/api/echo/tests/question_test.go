package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/tathmini/core/exam"
	"github.com/trezcool/tathmini/core/question"
	"github.com/trezcool/tathmini/core/user"
)

func validNewQuestion(coID string) question.NewQuestion {
	return question.NewQuestion{
		Type: question.TypeMCQ,
		Text: "Which data structure backs breadth-first search?",
		Options: question.Options{
			"a": "Stack",
			"b": "Queue",
		},
		CorrectKey: question.ChoiceKey("b"),
		MaxMarks:   2,
		COID:       coID,
		Difficulty: question.DifficultyEasy,
	}
}

func Test_questionApi_create(t *testing.T) {
	app := setup(t)

	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	rival := user.CreateUser(t, usrRepo, "Rival", "rival@test.cd", user.RoleTeacher, "s3cretP4ss")
	student := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleStudent, "s3cretP4ss")
	teacherToken := getToken(t, teacher)

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)
	graphs := createSubject(t, algo.ID, "Graph Theory", "CS201A", teacher.ID)
	dp := createSubject(t, algo.ID, "Dynamic Programming", "CS201B", rival.ID)
	co1 := createCO(t, graphs.ID, "CO1")
	rivalCO := createCO(t, dp.ID, "CO1")

	path := "/v1/subjects/" + graphs.ID + "/questions"

	body := func(mutate func(nq *question.NewQuestion)) []byte {
		nq := validNewQuestion(co1.ID)
		if mutate != nil {
			mutate(&nq)
		}
		return marchallObj(t, nq)
	}

	tests := []httpTest{
		{name: "Auth required", path: path, body: body(nil),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Teacher required", path: path, token: getToken(t, student), body: body(nil),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Not the subject teacher", path: path, token: getToken(t, rival), body: body(nil),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Unknown subject", path: "/v1/subjects/lol/questions", token: teacherToken, body: body(nil),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "subject not found"})},
		{name: "Invalid type", path: path, token: teacherToken,
			body:     body(func(nq *question.NewQuestion) { nq.Type = "ESSAY" }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"type": "invalid question type"})},
		{name: "Invalid difficulty", path: path, token: teacherToken,
			body:     body(func(nq *question.NewQuestion) { nq.Difficulty = "Impossible" }),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"difficulty": "invalid difficulty"})},
		{name: "MCQ without options", path: path, token: teacherToken,
			body: body(func(nq *question.NewQuestion) {
				nq.Options = nil
				nq.CorrectKey = question.AnswerKey{}
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"options": "this question type requires at least 2 options and a correct key"})},
		{name: "MCQ key not among options", path: path, token: teacherToken,
			body:     body(func(nq *question.NewQuestion) { nq.CorrectKey = question.ChoiceKey("z") }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"correct_key": "correct key does not match the question type or its options"})},
		{name: "Descriptive with options", path: path, token: teacherToken,
			body: body(func(nq *question.NewQuestion) {
				nq.Type = question.TypeDescriptive
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"options": "this question type does not take options or a correct key"})},
		{name: "Unknown co", path: path, token: teacherToken,
			body:     body(func(nq *question.NewQuestion) { nq.COID = "lol" }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"co_id": "course outcome not found"})},
		{name: "CO of another subject", path: path, token: teacherToken,
			body:     body(func(nq *question.NewQuestion) { nq.COID = rivalCO.ID }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"co_id": "course outcome does not belong to this subject"})},
		{name: "Unknown po", path: path, token: teacherToken,
			body:     body(func(nq *question.NewQuestion) { nq.POIDs = []string{"lol"} }),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"po_ids": "program outcome not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		po1 := createPO(t, btech.ID, "PO1")
		req, rec := newAuthRequest(http.MethodPost, path, teacherToken,
			body(func(nq *question.NewQuestion) {
				nq.POIDs = []string{po1.ID}
				nq.Tags = []string{"bfs", "traversal"}
			}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var q question.Question
		if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if q.ID == "" || q.SubjectID != graphs.ID || q.COID != co1.ID {
			t.Errorf("created = %+v", q)
		}
		if q.Version != 1 {
			t.Errorf("version = %v; want 1", q.Version)
		}
	})
}

func Test_questionApi_query(t *testing.T) {
	app := setup(t)

	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	rival := user.CreateUser(t, usrRepo, "Rival", "rival@test.cd", user.RoleTeacher, "s3cretP4ss")
	teacherToken := getToken(t, teacher)

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)
	graphs := createSubject(t, algo.ID, "Graph Theory", "CS201A", teacher.ID)
	co1 := createCO(t, graphs.ID, "CO1")
	co2 := createCO(t, graphs.ID, "CO2")

	mcq := createQuestion(t, graphs.ID, co1.ID)

	now := time.Now().UTC()
	hard, err := questionRepo.CreateQuestion(context.Background(), question.Question{
		ID: uuid.NewString(), SubjectID: graphs.ID, Type: question.TypeDescriptive,
		Text:     "Prove the correctness of Dijkstra's algorithm.",
		MaxMarks: 10, COID: co2.ID, Difficulty: question.DifficultyHard,
		Tags: []string{"proofs", "shortest-path"}, Version: 1,
		CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("creating question: %v", err)
	}

	path := "/v1/subjects/" + graphs.ID + "/questions"

	tests := []httpTest{
		{name: "Auth required", path: path,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Bank is private", path: path, token: getToken(t, rival),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Unknown subject", path: "/v1/subjects/lol/questions", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "subject not found"})},
		{name: "Get all", path: path, token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, mcq, hard)},
		{name: "Filter by type", path: path + "?type=MCQ", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, mcq)},
		{name: "Filter by difficulty", path: path + "?difficulty=Hard", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, hard)},
		{name: "Filter by co", path: path + "?co_id=" + co1.ID, token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, mcq)},
		{name: "Filter by tags", path: path + "?tags=proofs,shortest-path", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, hard)},
		{name: "Filter by tags: any requested tag matches", path: path + "?tags=proofs,graphs", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, hard)},
		{name: "Filter by tags: none match", path: path + "?tags=graphs", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "Filter with no match", path: path + "?type=MCQ&difficulty=Hard", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_questionApi_updateDelete(t *testing.T) {
	app := setup(t)

	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	rival := user.CreateUser(t, usrRepo, "Rival", "rival@test.cd", user.RoleTeacher, "s3cretP4ss")
	teacherToken := getToken(t, teacher)

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)
	graphs := createSubject(t, algo.ID, "Graph Theory", "CS201A", teacher.ID)
	co1 := createCO(t, graphs.ID, "CO1")

	q1 := createQuestion(t, graphs.ID, co1.ID)
	pinned := createQuestion(t, graphs.ID, co1.ID)

	// pinned is attached to an exam and may not be deleted
	examID := uuid.NewString()
	examRepo.CreateExam(exam.Exam{
		ID: examID, SubjectID: graphs.ID, Title: "Midsem", Type: "midsem",
		DurationSec: 3600, TotalMarks: 50, CreatedBy: teacher.ID, Status: exam.StatusScheduled,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	examRepo.PinQuestion(exam.ExamQuestion{
		ID: uuid.NewString(), ExamID: examID, QuestionID: pinned.ID,
		OrderIndex: 1, CreatedAt: time.Now().UTC(),
	})

	update := marchallObj(t, question.UpdateQuestion{
		Type:       question.TypeNumeric,
		Text:       "How many edges does a complete graph on 5 vertices have?",
		CorrectKey: question.NumberKey(10),
		MaxMarks:   3,
		COID:       co1.ID,
		Difficulty: question.DifficultyMedium,
	})

	tests := []httpTest{
		{name: "Retrieve: unknown question", method: http.MethodGet, path: "/v1/questions/lol", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "question not found"})},
		{name: "Retrieve: not the subject teacher", method: http.MethodGet, path: "/v1/questions/" + q1.ID, token: getToken(t, rival),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Retrieve: ok", method: http.MethodGet, path: "/v1/questions/" + q1.ID, token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, q1)},
		{name: "Update: unknown question", method: http.MethodPut, path: "/v1/questions/lol", token: teacherToken, body: update,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "question not found"})},
		{name: "Update: not the subject teacher", method: http.MethodPut, path: "/v1/questions/" + q1.ID, token: getToken(t, rival), body: update,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Delete: not the subject teacher", method: http.MethodDelete, path: "/v1/questions/" + q1.ID, token: getToken(t, rival),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Delete: referenced by an exam", method: http.MethodDelete, path: "/v1/questions/" + pinned.ID, token: teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "question is referenced by an exam and cannot be deleted"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Update: bumps the version", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/questions/"+q1.ID, teacherToken, update)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var q question.Question
		if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if q.Type != question.TypeNumeric || q.MaxMarks != 3 {
			t.Errorf("updated = %+v", q)
		}
		if q.Version != q1.Version+1 {
			t.Errorf("version = %v; want %v", q.Version, q1.Version+1)
		}
		if q.SubjectID != graphs.ID {
			t.Errorf("subject_id changed to %v", q.SubjectID)
		}
	})

	t.Run("Delete: ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/questions/"+q1.ID, teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/questions/"+q1.ID, teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}
