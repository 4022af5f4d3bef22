package inventory

import (
	"net/http"
	"testing"

	"gorm.io/datatypes"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
	"warehouse.GO/service/stock"
)

func TestAdjustAndTransfer(t *testing.T) {
	env := apitest.New(t)
	Routes(env.API, env.DB, env.Stock())
	_, manager := env.Login(entity.RoleManager)
	_, staff := env.Login(entity.RoleStaff)

	zones := []entity.Zone{{Code: "A", Locations: []entity.Location{{Code: "A-1"}}}}
	env.DB.Create(&entity.Warehouse{Code: "W1", Name: "Main", IsActive: true, Zones: datatypes.NewJSONType(zones)})
	env.DB.Create(&entity.Warehouse{Code: "W2", Name: "Branch", IsActive: true, Zones: datatypes.NewJSONType([]entity.Zone{})})
	env.DB.Create(&entity.Product{SKU: "P1", Name: "Pump", Unit: "pcs", Status: entity.ProductActive})

	adjust := map[string]any{"productId": 1, "warehouseId": 1, "locationCode": "A-1", "type": "increase", "quantity": 10, "reason": "count"}
	rec := env.Do(http.MethodPost, "/api/inventory/adjust", adjust, staff)
	apitest.Expect(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = env.Do(http.MethodPost, "/api/inventory/adjust", adjust, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	var m entity.StockMovement
	apitest.Decode(t, rec, &m)
	if m.Type != entity.MovementAdjustment || m.Quantity != 10 || m.BalanceAfter != 10 {
		t.Errorf("movement = %+v", m)
	}

	adjust["locationCode"] = "Z-9"
	rec = env.Do(http.MethodPost, "/api/inventory/adjust", adjust, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")

	transfer := map[string]any{"productId": 1, "fromWarehouseId": 1, "fromLocationCode": "A-1", "toWarehouseId": 2, "quantity": 11}
	rec = env.Do(http.MethodPost, "/api/inventory/transfer", transfer, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "INSUFFICIENT_STOCK")

	transfer["quantity"] = 4
	rec = env.Do(http.MethodPost, "/api/inventory/transfer", transfer, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	var res stock.TransferResult
	apitest.Decode(t, rec, &res)
	if res.Out.Quantity != -4 || res.In.BalanceAfter != 4 {
		t.Errorf("transfer = %+v %+v", res.Out, res.In)
	}

	rec = env.Do(http.MethodGet, "/api/inventory/product/1", nil, staff)
	var ps ProductStock
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &ps)
	if ps.Totals.Quantity != 10 || ps.Totals.Warehouses != 2 || len(ps.Rows) != 2 {
		t.Errorf("product stock = %+v", ps.Totals)
	}

	rec = env.Do(http.MethodGet, "/api/inventory?warehouseId=2", nil, staff)
	var rows []entity.Inventory
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &rows)
	if len(rows) != 1 || rows[0].AvailableQuantity != 4 {
		t.Errorf("rows = %+v", rows)
	}

	rec = env.Do(http.MethodGet, "/api/inventory/99", nil, staff)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")
}
