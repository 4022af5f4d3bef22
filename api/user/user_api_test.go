package user

import (
	"fmt"
	"net/http"
	"testing"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
)

func TestUserAdministration(t *testing.T) {
	env := apitest.New(t)
	RegisterUserRoutes(env.API, env.DB)
	admin, adminToken := env.Login(entity.RoleAdmin)
	_, manager := env.Login(entity.RoleManager)

	rec := env.Do(http.MethodGet, "/api/users", nil, manager)
	apitest.Expect(t, rec, http.StatusForbidden, "FORBIDDEN")

	body := map[string]any{"username": "picker1", "email": "Picker@Example.com", "password": "secret1", "role": "staff"}
	rec = env.Do(http.MethodPost, "/api/users", body, adminToken)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var u entity.User
	apitest.Decode(t, rec, &u)
	if u.Email != "picker@example.com" || u.Role != entity.RoleStaff || !u.IsActive {
		t.Errorf("user = %+v", u)
	}

	rec = env.Do(http.MethodPost, "/api/users", body, adminToken)
	b := apitest.Expect(t, rec, http.StatusConflict, "DUPLICATE_KEY")
	if b.Message != "Username already exists" {
		t.Errorf("message = %q", b.Message)
	}

	rec = env.Do(http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), map[string]any{"role": "manager", "isActive": false, "password": "newpass1"}, adminToken)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &u)
	if u.Role != entity.RoleManager || u.IsActive {
		t.Errorf("updated = %+v", u)
	}
	var stored entity.User
	env.DB.First(&stored, u.ID)
	if !stored.CheckPassword("newpass1") {
		t.Errorf("password was not changed")
	}

	rec = env.Do(http.MethodPut, fmt.Sprintf("/api/users/%d", admin.ID), map[string]any{"role": "staff"}, adminToken)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = env.Do(http.MethodGet, "/api/users?role=manager", nil, adminToken)
	b = apitest.Expect(t, rec, http.StatusOK, "")
	if b.Pagination.Total != 2 {
		t.Errorf("managers = %d, want 2", b.Pagination.Total)
	}

	rec = env.Do(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil, adminToken)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = env.Do(http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), nil, adminToken)
	apitest.Expect(t, rec, http.StatusOK, "")
	rec = env.Do(http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), nil, adminToken)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")
}
