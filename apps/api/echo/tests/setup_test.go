package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/tathmini/core/user"
)

func Test_setupApi_status(t *testing.T) {
	app := setup(t)

	// fresh install: nothing is set up yet
	req, rec := newRequest(http.MethodGet, "/v1/setup/status")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	var status user.SetupStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshaling status: %v", err)
	}
	if status.IsComplete {
		t.Error("fresh install reports setup complete")
	}

	// after initialization
	body := marchallObj(t, user.SetupRequest{
		AdminEmail:    "admin@test.cd",
		AdminPassword: "s3cretP4ss",
		AdminName:     "Admin",
		InstituteName: "Test Institute",
	})
	req, rec = newRequest(http.MethodPost, "/v1/setup/initialize", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("initialize code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	req, rec = newRequest(http.MethodGet, "/v1/setup/status")
	app.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshaling status: %v", err)
	}
	if !status.IsComplete {
		t.Error("setup not reported complete after initialization")
	}
	if status.InstituteName != "Test Institute" {
		t.Errorf("institute name = %q; want %q", status.InstituteName, "Test Institute")
	}
}

func Test_setupApi_initialize(t *testing.T) {
	app := setup(t)

	valid := marchallObj(t, user.SetupRequest{
		AdminEmail:    "admin@test.cd",
		AdminPassword: "s3cretP4ss",
		AdminName:     "Admin",
		InstituteName: "Test Institute",
	})

	t.Run("invalid payload", func(t *testing.T) {
		body := marchallObj(t, user.SetupRequest{AdminEmail: "nope"})
		req, rec := newRequest(http.MethodPost, "/v1/setup/initialize", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		body := marchallObj(t, user.SetupRequest{
			AdminEmail:    "admin2@test.cd",
			AdminPassword: "short",
			AdminName:     "Admin",
			InstituteName: "Test Institute",
		})
		req, rec := newRequest(http.MethodPost, "/v1/setup/initialize", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/setup/initialize", valid)
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
		if resp.TokenType != "bearer" {
			t.Errorf("token_type = %q; want %q", resp.TokenType, "bearer")
		}
		if resp.User.Role != user.RoleSuperAdmin {
			t.Errorf("role = %v; want %v", resp.User.Role, user.RoleSuperAdmin)
		}

		// the access token works immediately
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.AccessToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("me code = %v; want %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("already initialized", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/setup/initialize", valid)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}
