package category

import (
	"net/http"
	"testing"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
)

type node struct {
	Code     string `json:"code"`
	Children []node `json:"children"`
}

func TestCategoryTree(t *testing.T) {
	env := apitest.New(t)
	RegisterCategoryRoutes(env.API, env.DB)
	_, admin := env.Login(entity.RoleAdmin)
	_, staff := env.Login(entity.RoleStaff)

	rec := env.Do(http.MethodPost, "/api/categories", map[string]any{"name": "Tools", "code": "tools"}, staff)
	apitest.Expect(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = env.Do(http.MethodPost, "/api/categories", map[string]any{"name": "Tools", "code": "tools"}, admin)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var root entity.Category
	apitest.Decode(t, rec, &root)
	if root.Code != "TOOLS" || !root.IsActive {
		t.Errorf("root = %+v", root)
	}

	rec = env.Do(http.MethodPost, "/api/categories", map[string]any{"name": "Drills", "code": "drills", "parentId": root.ID}, admin)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var child entity.Category
	apitest.Decode(t, rec, &child)

	rec = env.Do(http.MethodPost, "/api/categories", map[string]any{"name": "Saws", "code": "saws", "parentId": 99}, admin)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = env.Do(http.MethodPost, "/api/categories", map[string]any{"name": "Dup", "code": "TOOLS"}, admin)
	apitest.Expect(t, rec, http.StatusConflict, "DUPLICATE_KEY")

	rec = env.Do(http.MethodGet, "/api/categories/tree", nil, staff)
	var tree []node
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &tree)
	if len(tree) != 1 || len(tree[0].Children) != 1 || tree[0].Children[0].Code != "DRILLS" {
		t.Errorf("tree = %+v", tree)
	}

	rec = env.Do(http.MethodPut, "/api/categories/1", map[string]any{"parentId": child.ID}, admin)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = env.Do(http.MethodGet, "/api/categories?parentId=0", nil, staff)
	var list []entity.Category
	b := apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &list)
	if len(list) != 1 || b.Pagination.Total != 1 {
		t.Errorf("roots = %+v", list)
	}

	rec = env.Do(http.MethodDelete, "/api/categories/1", nil, admin)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = env.Do(http.MethodPut, "/api/categories/2", map[string]any{"parentId": 0, "isActive": false}, admin)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &child)
	if child.ParentID != nil || child.IsActive {
		t.Errorf("moved = %+v", child)
	}

	rec = env.Do(http.MethodDelete, "/api/categories/1", nil, admin)
	apitest.Expect(t, rec, http.StatusOK, "")
	rec = env.Do(http.MethodGet, "/api/categories/1", nil, staff)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")
}
