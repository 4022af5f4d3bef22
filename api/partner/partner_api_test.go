package partner

import (
	"net/http"
	"testing"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
)

func TestCustomerRoutes(t *testing.T) {
	env := apitest.New(t)
	RegisterCustomerRoutes(env.API, env.DB)
	_, manager := env.Login(entity.RoleManager)

	rec := env.Do(http.MethodPost, "/api/customers", map[string]any{"code": "c1", "name": "Acme", "phone": "12", "type": "group"}, manager)
	b := apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	fields := map[string]bool{}
	for _, e := range b.Errors {
		fields[e["field"]] = true
	}
	if !fields["phone"] || !fields["type"] {
		t.Errorf("errors = %v", b.Errors)
	}

	rec = env.Do(http.MethodPost, "/api/customers", map[string]any{"code": "c1", "name": "Acme", "email": "Sales@Acme.test", "phone": "0912345678"}, manager)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var cust entity.Customer
	apitest.Decode(t, rec, &cust)
	if cust.Code != "C1" || cust.Email != "sales@acme.test" || cust.Type != entity.CustomerIndividual || !cust.IsActive {
		t.Errorf("customer = %+v", cust)
	}

	rec = env.Do(http.MethodPut, "/api/customers/1", map[string]any{"type": "company", "isActive": false}, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &cust)
	if cust.Type != entity.CustomerCompany || cust.IsActive {
		t.Errorf("updated = %+v", cust)
	}

	rec = env.Do(http.MethodGet, "/api/customers?isActive=false&type=company", nil, manager)
	b = apitest.Expect(t, rec, http.StatusOK, "")
	if b.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1", b.Pagination.Total)
	}

	rec = env.Do(http.MethodDelete, "/api/customers/1", nil, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	rec = env.Do(http.MethodDelete, "/api/customers/1", nil, manager)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestSupplierRoutes(t *testing.T) {
	env := apitest.New(t)
	RegisterSupplierRoutes(env.API, env.DB)
	_, manager := env.Login(entity.RoleManager)
	_, staff := env.Login(entity.RoleStaff)

	rec := env.Do(http.MethodPost, "/api/suppliers", map[string]any{"code": "s1", "name": "Steel Co", "paymentTerms": "NET30"}, staff)
	apitest.Expect(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = env.Do(http.MethodPost, "/api/suppliers", map[string]any{"code": "s1", "name": "Steel Co", "paymentTerms": "NET30"}, manager)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var sup entity.Supplier
	apitest.Decode(t, rec, &sup)
	if sup.Code != "S1" || sup.PaymentTerms != "NET30" {
		t.Errorf("supplier = %+v", sup)
	}

	env.DB.Create(&entity.Warehouse{Code: "W1", Name: "Main", IsActive: true})
	env.DB.Create(&entity.Inbound{Number: "IN-1", SupplierID: &sup.ID, WarehouseID: 1, Status: entity.StatusDraft, CreatedByID: 1})

	rec = env.Do(http.MethodDelete, "/api/suppliers/1", nil, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = env.Do(http.MethodGet, "/api/suppliers/1", nil, staff)
	apitest.Expect(t, rec, http.StatusOK, "")
}
