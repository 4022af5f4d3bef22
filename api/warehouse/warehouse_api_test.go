package warehouse

import (
	"net/http"
	"testing"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
)

type detail struct {
	entity.Warehouse
	Stock struct {
		Quantity int64 `json:"quantity"`
	} `json:"stock"`
}

func TestWarehouseRoutes(t *testing.T) {
	env := apitest.New(t)
	RegisterWarehouseRoutes(env.API, env.DB)
	mgr, manager := env.Login(entity.RoleManager)
	_, admin := env.Login(entity.RoleAdmin)

	zones := []map[string]any{
		{"code": "a", "name": "Aisle A", "locations": []map[string]any{{"code": "a-1"}, {"code": "A-1"}}},
	}
	rec := env.Do(http.MethodPost, "/api/warehouses", map[string]any{"code": "hn", "name": "Hanoi", "zones": zones}, manager)
	b := apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	if len(b.Errors) != 1 || b.Errors[0]["field"] != "zones" {
		t.Errorf("errors = %v", b.Errors)
	}

	zones[0]["locations"] = []map[string]any{{"code": "a-1", "capacity": 100}, {"code": "a-2"}}
	rec = env.Do(http.MethodPost, "/api/warehouses", map[string]any{"code": "hn", "name": "Hanoi", "managerId": 99, "zones": zones}, manager)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = env.Do(http.MethodPost, "/api/warehouses", map[string]any{"code": "hn", "name": "Hanoi", "managerId": mgr.ID, "zones": zones}, manager)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var w entity.Warehouse
	apitest.Decode(t, rec, &w)
	if w.Code != "HN" || !w.HasLocation("A-2") || w.HasLocation("B-1") || *w.ManagerID != mgr.ID {
		t.Errorf("warehouse = %+v", w)
	}

	p := &entity.Product{SKU: "P1", Name: "Pump", Unit: "pcs", Status: entity.ProductActive}
	env.DB.Create(p)
	env.DB.Create(&entity.Inventory{ProductID: p.ID, WarehouseID: w.ID, LocationCode: "A-1", Quantity: 7})

	rec = env.Do(http.MethodGet, "/api/warehouses/1", nil, manager)
	var d detail
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &d)
	if d.Code != "HN" || d.Stock.Quantity != 7 {
		t.Errorf("detail = %+v", d)
	}

	rec = env.Do(http.MethodGet, "/api/warehouses/1/inventory", nil, manager)
	b = apitest.Expect(t, rec, http.StatusOK, "")
	if b.Pagination.Total != 1 {
		t.Errorf("inventory rows = %d, want 1", b.Pagination.Total)
	}

	rec = env.Do(http.MethodPut, "/api/warehouses/1", map[string]any{"managerId": 0, "capacity": 500}, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &w)
	if w.ManagerID != nil || w.Capacity != 500 {
		t.Errorf("updated = %+v", w)
	}

	rec = env.Do(http.MethodDelete, "/api/warehouses/1", nil, manager)
	apitest.Expect(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = env.Do(http.MethodDelete, "/api/warehouses/1", nil, admin)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}
