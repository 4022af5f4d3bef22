package custom

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"warehouse.GO/cron"
	"warehouse.GO/graphql"
	gqlregistry "warehouse.GO/graphql/registry"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
)

func seed(t *testing.T) (*gorm.DB, entity.Inventory) {
	t.Helper()
	db := testdb.Open(t)
	w := entity.Warehouse{Code: "W1", Name: "Main", IsActive: true}
	if err := db.Create(&w).Error; err != nil {
		t.Fatal(err)
	}
	p := entity.Product{SKU: "P-1", Name: "Pump", Status: entity.ProductActive}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	inv := entity.Inventory{ProductID: p.ID, WarehouseID: w.ID, LocationCode: "A-1", Quantity: 10, ReservedQuantity: 3}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatal(err)
	}
	return db, inv
}

func TestStockBySKU(t *testing.T) {
	db, _ := seed(t)
	ctx := graphql.WithDB(context.Background(), db)

	out, err := gqlregistry.Resolve(ctx, ExtStockBySKU, map[string]interface{}{"sku": " P-1 "})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m := out.(map[string]interface{})
	if m["quantity"] != int64(10) || m["availableQuantity"] != int64(7) || m["warehouses"] != int64(1) {
		t.Errorf("result = %v", m)
	}

	out, err = StockBySKU(ctx, map[string]interface{}{"sku": "NOPE"})
	if err != nil || out != nil {
		t.Errorf("missing sku = %v, %v; want nil, nil", out, err)
	}
	if _, err := StockBySKU(ctx, map[string]interface{}{}); err == nil {
		t.Error("expected error without sku")
	}
	if _, err := StockBySKU(context.Background(), map[string]interface{}{"sku": "P-1"}); err == nil {
		t.Error("expected error without db")
	}
}

func TestReconcile(t *testing.T) {
	db, inv := seed(t)
	if j, ok := cron.Lookup(JobReconcile); !ok || j.Schedule != reconcileDefault {
		t.Fatalf("job = %+v, %v", j, ok)
	}
	db.Exec("UPDATE inventories SET available_quantity = 99 WHERE id = ?", inv.ID)

	if err := Reconcile(context.Background(), db); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	var got entity.Inventory
	db.First(&got, inv.ID)
	if got.AvailableQuantity != 7 {
		t.Errorf("available = %d, want 7", got.AvailableQuantity)
	}
}

func TestPrintSummary(t *testing.T) {
	db, _ := seed(t)
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	if err := PrintSummary(c, db); err != nil {
		t.Fatalf("PrintSummary: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "W1") || !strings.Contains(lines[1], "available=7") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestVersionHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, VersionPath, nil), rec)
	if err := VersionHandler(c); err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || body["version"] != Version {
		t.Errorf("got %d %v", rec.Code, body)
	}
}
