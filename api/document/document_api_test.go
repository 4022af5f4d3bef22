package document

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
)

func setup(t *testing.T) (*apitest.Env, string, string) {
	env := apitest.New(t)
	svc := env.Stock()
	InboundRoutes(env.API, env.DB, svc)
	OutboundRoutes(env.API, env.DB, svc)
	_, manager := env.Login(entity.RoleManager)
	_, staff := env.Login(entity.RoleStaff)
	zones := []entity.Zone{{Code: "A", Locations: []entity.Location{{Code: "A-1"}}}}
	env.DB.Create(&entity.Warehouse{Code: "W1", Name: "Main", IsActive: true, Zones: datatypes.NewJSONType(zones)})
	env.DB.Create(&entity.Product{SKU: "P1", Name: "Pump", Unit: "pcs", Status: entity.ProductActive, SellingPrice: decimal.NewFromInt(9)})
	return env, manager, staff
}

func path(kind string, id uint, step string) string {
	if step == "" {
		return fmt.Sprintf("/api/%s/%d", kind, id)
	}
	return fmt.Sprintf("/api/%s/%d/%s", kind, id, step)
}

func TestInboundWorkflow(t *testing.T) {
	env, manager, staff := setup(t)

	rec := env.Do(http.MethodPost, "/api/inbounds", map[string]any{"warehouseId": 1, "items": []any{}}, staff)
	apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")

	body := map[string]any{
		"warehouseId": 1,
		"items":       []map[string]any{{"productId": 1, "locationCode": "A-1", "quantity": 6, "unitPrice": "2.5"}},
	}
	rec = env.Do(http.MethodPost, "/api/inbounds", body, staff)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var doc entity.Inbound
	apitest.Decode(t, rec, &doc)
	if doc.Status != entity.StatusDraft || doc.TotalQuantity != 6 || !doc.TotalAmount.Equal(decimal.NewFromInt(15)) {
		t.Errorf("created = %s %d %s", doc.Status, doc.TotalQuantity, doc.TotalAmount)
	}

	rec = env.Do(http.MethodPost, path("inbounds", doc.ID, "complete"), nil, staff)
	apitest.Expect(t, rec, http.StatusBadRequest, "INVALID_STATUS")

	body["items"] = []map[string]any{{"productId": 1, "locationCode": "A-1", "quantity": 8, "unitPrice": "2.5"}}
	rec = env.Do(http.MethodPut, path("inbounds", doc.ID, ""), body, staff)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &doc)
	if doc.TotalQuantity != 8 || len(doc.Items) != 1 {
		t.Errorf("updated = %d items %d", doc.TotalQuantity, len(doc.Items))
	}

	apitest.Expect(t, env.Do(http.MethodPost, path("inbounds", doc.ID, "submit"), nil, staff), http.StatusOK, "")
	apitest.Expect(t, env.Do(http.MethodPost, path("inbounds", doc.ID, "approve"), nil, staff), http.StatusForbidden, "FORBIDDEN")
	apitest.Expect(t, env.Do(http.MethodPut, path("inbounds", doc.ID, ""), body, staff), http.StatusBadRequest, "INVALID_STATUS")
	apitest.Expect(t, env.Do(http.MethodPost, path("inbounds", doc.ID, "approve"), nil, manager), http.StatusOK, "")

	rec = env.Do(http.MethodPost, path("inbounds", doc.ID, "complete"), nil, staff)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &doc)
	if doc.Status != entity.StatusCompleted || doc.ReceivedDate == nil {
		t.Errorf("completed = %s %v", doc.Status, doc.ReceivedDate)
	}

	rec = env.Do(http.MethodPost, path("inbounds", doc.ID, "cancel"), map[string]any{"reason": "late"}, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "INVALID_STATUS")

	var inv entity.Inventory
	env.DB.Where("product_id = 1 AND warehouse_id = 1 AND location_code = ?", "A-1").First(&inv)
	if inv.Quantity != 8 || inv.AvailableQuantity != 8 {
		t.Errorf("inventory = %d/%d", inv.Quantity, inv.AvailableQuantity)
	}

	rec = env.Do(http.MethodGet, "/api/inbounds?status=completed&warehouseId=1", nil, staff)
	b := apitest.Expect(t, rec, http.StatusOK, "")
	if b.Pagination.Total != 1 {
		t.Errorf("completed inbounds = %d, want 1", b.Pagination.Total)
	}
}

func TestOutboundWorkflow(t *testing.T) {
	env, manager, staff := setup(t)
	env.DB.Create(&entity.Inventory{ProductID: 1, WarehouseID: 1, LocationCode: "A-1", Quantity: 5})

	body := map[string]any{
		"warehouseId": 1,
		"items":       []map[string]any{{"productId": 1, "locationCode": "A-1", "quantity": 7}},
	}
	rec := env.Do(http.MethodPost, "/api/outbounds", body, staff)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var big entity.Outbound
	apitest.Decode(t, rec, &big)
	if big.Type != entity.OutboundSale || !big.TotalAmount.Equal(decimal.NewFromInt(63)) {
		t.Errorf("created = %s %s", big.Type, big.TotalAmount)
	}
	apitest.Expect(t, env.Do(http.MethodPost, path("outbounds", big.ID, "submit"), nil, staff), http.StatusOK, "")
	b := apitest.Expect(t, env.Do(http.MethodPost, path("outbounds", big.ID, "approve"), nil, manager), http.StatusBadRequest, "INSUFFICIENT_STOCK")
	if b.Details == nil {
		t.Errorf("insufficient stock without details")
	}

	body["items"] = []map[string]any{{"productId": 1, "locationCode": "A-1", "quantity": 3}}
	rec = env.Do(http.MethodPost, "/api/outbounds", body, staff)
	var doc entity.Outbound
	apitest.Expect(t, rec, http.StatusCreated, "")
	apitest.Decode(t, rec, &doc)
	apitest.Expect(t, env.Do(http.MethodPost, path("outbounds", doc.ID, "submit"), nil, staff), http.StatusOK, "")
	apitest.Expect(t, env.Do(http.MethodPost, path("outbounds", doc.ID, "approve"), nil, manager), http.StatusOK, "")

	var inv entity.Inventory
	env.DB.First(&inv)
	if inv.ReservedQuantity != 3 || inv.AvailableQuantity != 2 {
		t.Errorf("after approve = %d/%d", inv.ReservedQuantity, inv.AvailableQuantity)
	}

	rec = env.Do(http.MethodPost, path("outbounds", doc.ID, "cancel"), map[string]any{"reason": "customer changed mind"}, staff)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &doc)
	if doc.Status != entity.StatusCancelled || doc.CancelReason != "customer changed mind" {
		t.Errorf("cancelled = %s %q", doc.Status, doc.CancelReason)
	}
	env.DB.First(&inv)
	if inv.ReservedQuantity != 0 || inv.AvailableQuantity != 5 {
		t.Errorf("after release = %d/%d", inv.ReservedQuantity, inv.AvailableQuantity)
	}

	apitest.Expect(t, env.Do(http.MethodDelete, path("outbounds", doc.ID, ""), nil, staff), http.StatusBadRequest, "INVALID_STATUS")
	apitest.Expect(t, env.Do(http.MethodPost, path("outbounds", big.ID, "cancel"), nil, staff), http.StatusOK, "")

	rec = env.Do(http.MethodPost, "/api/outbounds", body, staff)
	apitest.Decode(t, rec, &doc)
	apitest.Expect(t, env.Do(http.MethodDelete, path("outbounds", doc.ID, ""), nil, staff), http.StatusOK, "")
	apitest.Expect(t, env.Do(http.MethodGet, path("outbounds", doc.ID, ""), nil, staff), http.StatusNotFound, "NOT_FOUND")
}
