package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/tathmini/core/academic"
	"github.com/trezcool/tathmini/core/user"
)

func Test_academicApi_departments(t *testing.T) {
	app := setup(t)

	admin := user.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleSuperAdmin, "s3cretP4ss")
	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	adminToken := getToken(t, admin)

	cse := createDepartment(t, "Computer Science", "CSE")

	body := func(name, code string) []byte {
		return marchallObj(t, academic.NewDepartment{Name: name, Code: code})
	}

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/departments",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", method: http.MethodGet, path: "/v1/departments", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, cse)},
		{name: "Retrieve: unknown department", method: http.MethodGet, path: "/v1/departments/lol", token: getToken(t, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "department not found"})},
		{name: "Retrieve: ok", method: http.MethodGet, path: "/v1/departments/" + cse.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, cse)},
		{name: "Create: admin required", method: http.MethodPost, path: "/v1/departments", token: getToken(t, teacher),
			body: body("Mechanical", "ME"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Create: code too short", method: http.MethodPost, path: "/v1/departments", token: adminToken,
			body: body("Mechanical", "M"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "code must be at least 2 characters in length"})},
		{name: "Create: duplicate code", method: http.MethodPost, path: "/v1/departments", token: adminToken,
			body: body("Cloned Dept", cse.Code), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "department code already exists"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Create: ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/departments", adminToken, body("Mechanical", "ME"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var dept academic.Department
		if err := json.Unmarshal(rec.Body.Bytes(), &dept); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if dept.ID == "" || dept.Code != "ME" {
			t.Errorf("created = %+v", dept)
		}
	})
}

func Test_academicApi_programs(t *testing.T) {
	app := setup(t)

	admin := user.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleSuperAdmin, "s3cretP4ss")
	adminToken := getToken(t, admin)

	cse := createDepartment(t, "Computer Science", "CSE")
	me := createDepartment(t, "Mechanical", "ME")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	mtech := createProgram(t, me.ID, "M.Tech ME", "MTME")

	body := func(deptID, name, code string) []byte {
		return marchallObj(t, academic.NewProgram{DeptID: deptID, Name: name, Code: code})
	}

	tests := []httpTest{
		{name: "Get all", method: http.MethodGet, path: "/v1/programs", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, btech, mtech)},
		{name: "Filter by department", method: http.MethodGet, path: "/v1/programs?dept_id=" + cse.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, btech)},
		{name: "Filter by unknown department", method: http.MethodGet, path: "/v1/programs?dept_id=lol", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "Create: unknown parent", method: http.MethodPost, path: "/v1/programs", token: adminToken,
			body: body("lol", "B.Sc Physics", "BSPHY"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dept_id": "department not found"})},
		{name: "Create: duplicate code", method: http.MethodPost, path: "/v1/programs", token: adminToken,
			body: body(cse.ID, "Cloned Program", btech.Code), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "program code already exists"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_academicApi_courses(t *testing.T) {
	app := setup(t)

	admin := user.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleSuperAdmin, "s3cretP4ss")
	adminToken := getToken(t, admin)

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)

	body := func(programID, name, code string, semester int) []byte {
		return marchallObj(t, academic.NewCourse{ProgramID: programID, Name: name, Code: code, Semester: semester, BatchYear: 2024})
	}

	tests := []httpTest{
		{name: "Filter by program", method: http.MethodGet, path: "/v1/courses?program_id=" + btech.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, algo)},
		{name: "Create: unknown parent", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body: body("lol", "Databases", "CS301", 5), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"program_id": "program not found"})},
		{name: "Create: bad semester", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body: body(btech.ID, "Databases", "CS301", 11), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"semester": "semester must be 10 or less"})},
		{name: "Create: duplicate code in program", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body: body(btech.ID, "Cloned Course", algo.Code, 3), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "a course with this code already exists in this program"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_academicApi_subjects(t *testing.T) {
	app := setup(t)

	admin := user.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleSuperAdmin, "s3cretP4ss")
	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	student := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleStudent, "s3cretP4ss")
	adminToken := getToken(t, admin)

	cse := createDepartment(t, "Computer Science", "CSE")
	btech := createProgram(t, cse.ID, "B.Tech CSE", "BTCSE")
	algo := createCourse(t, btech.ID, "Algorithms", "CS201", 3)
	graphs := createSubject(t, algo.ID, "Graph Theory", "CS201A", teacher.ID)

	body := func(courseID, code, teacherID string) []byte {
		return marchallObj(t, academic.NewSubject{CourseID: courseID, Name: "Dynamic Programming", Code: code, Credits: 3, TeacherID: teacherID})
	}

	tests := []httpTest{
		{name: "Filter by course", method: http.MethodGet, path: "/v1/subjects?course_id=" + algo.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, graphs)},
		{name: "Retrieve: ok", method: http.MethodGet, path: "/v1/subjects/" + graphs.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, graphs)},
		{name: "Create: unknown course", method: http.MethodPost, path: "/v1/subjects", token: adminToken,
			body: body("lol", "CS201B", teacher.ID), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_id": "course not found"})},
		{name: "Create: unknown teacher", method: http.MethodPost, path: "/v1/subjects", token: adminToken,
			body: body(algo.ID, "CS201B", "lol"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacher_id": "user not found"})},
		{name: "Create: student cannot teach", method: http.MethodPost, path: "/v1/subjects", token: adminToken,
			body: body(algo.ID, "CS201B", student.ID), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacher_id": "user cannot be assigned as a subject teacher"})},
		{name: "Create: duplicate code in course", method: http.MethodPost, path: "/v1/subjects", token: adminToken,
			body: body(algo.ID, graphs.Code, teacher.ID), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "a subject with this code already exists in this course"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
