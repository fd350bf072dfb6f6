package tests

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/tathmini/core/exam"
	"github.com/trezcool/tathmini/core/user"
)

func createExam(t *testing.T, subjectID, createdBy, title string) exam.Exam {
	t.Helper()
	now := time.Now().UTC()
	ex := exam.Exam{
		ID: uuid.NewString(), SubjectID: subjectID, Title: title, Type: "quiz",
		DurationSec: 1800, JoinWindowSec: 300, TotalMarks: 20,
		Randomized: "none", ReentryPolicy: "block",
		CreatedBy: createdBy, Status: exam.StatusScheduled,
		CreatedAt: now, UpdatedAt: now,
	}
	examRepo.CreateExam(ex)
	return ex
}

func Test_examApi_query(t *testing.T) {
	app := setup(t)

	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	student := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleStudent, "s3cretP4ss")

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)
	graphs := createSubject(t, algo.ID, "Graph Theory", "CS201A", teacher.ID)
	dp := createSubject(t, algo.ID, "Dynamic Programming", "CS201B", teacher.ID)

	quiz := createExam(t, graphs.ID, teacher.ID, "Quiz 1")
	midsem := createExam(t, dp.ID, teacher.ID, "Midsem")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/exams",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/exams", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, quiz, midsem)},
		{name: "Filter by subject", path: "/v1/exams?subject_id=" + graphs.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, quiz)},
		{name: "Filter by unknown subject", path: "/v1/exams?subject_id=lol", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "Retrieve: unknown exam", path: "/v1/exams/lol", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "exam not found"})},
		{name: "Retrieve: ok", path: "/v1/exams/" + quiz.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, quiz)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_examApi_events(t *testing.T) {
	app := setup(t)

	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	student := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleStudent, "s3cretP4ss")

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)
	graphs := createSubject(t, algo.ID, "Graph Theory", "CS201A", teacher.ID)
	quiz := createExam(t, graphs.ID, teacher.ID, "Quiz 1")

	srv := httptest.NewServer(app)
	defer srv.Close()

	t.Run("unknown exam", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/exams/lol/events", nil)
		req.Header.Set("Authorization", "Bearer "+getToken(t, student))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("code = %v; want %v", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("streams room events", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/exams/"+quiz.ID+"/events", nil)
		req.Header.Set("Authorization", "Bearer "+getToken(t, student))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("code = %v; want %v", resp.StatusCode, http.StatusOK)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("content-type = %q; want %q", ct, "text/event-stream")
		}

		// the subscription is set up server-side after the response starts
		// streaming, so keep publishing until the event comes through
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			for {
				select {
				case <-stop:
					return
				case <-time.After(10 * time.Millisecond):
					hub.Publish(quiz.ID, exam.Event{Name: "exam_started", Data: map[string]string{"exam_id": quiz.ID}})
				}
			}
		}()

		timeout := time.AfterFunc(5*time.Second, func() { resp.Body.Close() })
		defer timeout.Stop()

		var event, data string
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
			if event != "" && data != "" {
				break
			}
		}
		if event != "exam_started" {
			t.Errorf("event = %q; want %q", event, "exam_started")
		}
		if want := `{"exam_id":"` + quiz.ID + `"}`; data != want {
			t.Errorf("data = %q; want %q", data, want)
		}
	})
}
