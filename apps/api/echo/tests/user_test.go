package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/tathmini/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleTeacher, "s3cretP4ss")

	body := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}
	invalidCreds := marchallObj(t, httpErr{Error: "invalid email or password"})

	tests := []httpTest{
		{name: "empty body", body: body("", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"})},
		{name: "unknown email", body: body("lol@test.cd", "s3cretP4ss"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "wrong password", body: body(usr.Email, "lol"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body(usr.Email, "s3cretP4ss"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			AccessToken  string    `json:"access_token"`
			RefreshToken string    `json:"refresh_token"`
			TokenType    string    `json:"token_type"`
			User         user.User `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("missing tokens in response")
		}
		if resp.User.ID != usr.ID {
			t.Errorf("user.id = %v; want %v", resp.User.ID, usr.ID)
		}
		if resp.User.LastLoginAt.IsZero() {
			t.Error("last_login_at not set on login")
		}
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	usr := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleTeacher, "s3cretP4ss")

	body := func(token string) []byte {
		return marchallObj(t, map[string]string{"refresh_token": token})
	}
	invalid := marchallObj(t, httpErr{Error: "invalid or expired refresh token"})

	tests := []httpTest{
		{name: "garbage token", body: body("lol"), wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "access token rejected", body: body(getToken(t, usr)), wantCode: http.StatusUnauthorized, wantData: invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/refresh", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/refresh", body(getRefreshToken(t, usr)))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}

		// issued access token is usable
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.AccessToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("me code = %v; want %v", rec.Code, http.StatusOK)
		}
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	usr := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleStudent, "s3cretP4ss")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "refresh token rejected", token: getRefreshToken(t, usr), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"})},
		{name: "ok", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	app := setup(t)

	admin := user.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleSuperAdmin, "s3cretP4ss")
	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	student := user.CreateUser(t, usrRepo, "Hero", "hero@test.cd", user.RoleStudent, "s3cretP4ss")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Teacher is not admin", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher, student)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userCreate(t *testing.T) {
	app := setup(t)

	admin := user.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleSuperAdmin, "s3cretP4ss")
	teacher := user.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher, "s3cretP4ss")
	adminToken := getToken(t, admin)

	newUser := func(name, email string, role user.Role) []byte {
		return marchallObj(t, user.NewUser{Name: name, Email: email, Role: role, Password: "s3cretP4ss"})
	}

	tests := []httpTest{
		{name: "Auth required", body: newUser("Awe", "awe@test.cd", user.RoleTeacher),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, teacher), body: newUser("Awe", "awe@test.cd", user.RoleTeacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "invalid role", token: adminToken, body: newUser("Awe", "awe@test.cd", "GUEST"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "invalid role"})},
		{name: "duplicate email", token: adminToken, body: newUser("Awe", teacher.Email, user.RoleTeacher),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users", adminToken, newUser("Awe", "awe@test.cd", user.RoleTeacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var created user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if created.Email != "awe@test.cd" || created.Role != user.RoleTeacher {
			t.Errorf("created = %+v", created)
		}
	})
}
