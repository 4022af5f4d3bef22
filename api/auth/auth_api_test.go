package auth

import (
	"net/http"
	"strings"
	"testing"

	"warehouse.GO/api/apitest"
	coreAuth "warehouse.GO/core/auth"
	"warehouse.GO/model/entity"
	authRepo "warehouse.GO/model/repository/auth"
	authService "warehouse.GO/service/auth"
)

func setup(t *testing.T) *apitest.Env {
	env := apitest.New(t)
	bl := coreAuth.NewBlacklist(authRepo.NewAuthRepository(env.DB), nil, env.Logger)
	Routes(env.API, authService.NewService(env.DB, env.Tokens, bl, env.Logger))
	return env
}

func TestAuthFlow(t *testing.T) {
	env := setup(t)

	rec := env.Do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "secret1",
	}, "")
	var sess struct {
		User         entity.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	apitest.Expect(t, rec, http.StatusCreated, "")
	apitest.Decode(t, rec, &sess)
	if sess.User.Role != entity.RoleStaff || sess.AccessToken == "" {
		t.Fatalf("session = %+v", sess)
	}

	rec = env.Do(http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "nope"}, "")
	apitest.Expect(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	rec = env.Do(http.MethodPost, "/api/auth/login", map[string]string{"email": "carol@example.com", "password": "secret1"}, "")
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &sess)

	rec = env.Do(http.MethodGet, "/api/auth/me", nil, sess.AccessToken)
	var me entity.User
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &me)
	if me.Username != "carol" {
		t.Errorf("me = %+v", me)
	}
	if body := rec.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "refreshToken") {
		t.Errorf("secrets leaked: %s", body)
	}

	rec = env.Do(http.MethodPost, "/api/auth/refresh-token", map[string]string{"refreshToken": sess.RefreshToken}, "")
	apitest.Expect(t, rec, http.StatusOK, "")

	rec = env.Do(http.MethodPost, "/api/auth/logout", nil, sess.AccessToken)
	apitest.Expect(t, rec, http.StatusOK, "")
	rec = env.Do(http.MethodGet, "/api/auth/me", nil, sess.AccessToken)
	apitest.Expect(t, rec, http.StatusUnauthorized, "TOKEN_REVOKED")
}

func TestRegister_Validation(t *testing.T) {
	env := setup(t)
	rec := env.Do(http.MethodPost, "/api/auth/register", map[string]string{"username": "x", "email": "bad", "password": "1"}, "")
	b := apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	if len(b.Errors) != 3 {
		t.Errorf("errors = %v, want 3", b.Errors)
	}
	rec = env.Do(http.MethodPost, "/api/auth/register", "{", "")
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestMe_RequiresToken(t *testing.T) {
	env := setup(t)
	rec := env.Do(http.MethodGet, "/api/auth/me", nil, "")
	apitest.Expect(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestChangePassword(t *testing.T) {
	env := setup(t)
	_, token := env.Login(entity.RoleStaff)
	rec := env.Do(http.MethodPut, "/api/auth/change-password", map[string]string{"currentPassword": "secret1", "newPassword": "abc"}, token)
	apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	rec = env.Do(http.MethodPut, "/api/auth/change-password", map[string]string{"currentPassword": "secret1", "newPassword": "secret9"}, token)
	apitest.Expect(t, rec, http.StatusOK, "")
	rec = env.Do(http.MethodGet, "/api/auth/me", nil, token)
	apitest.Expect(t, rec, http.StatusUnauthorized, "TOKEN_REVOKED")
}
