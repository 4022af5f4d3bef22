package product

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"warehouse.GO/core/cache"
	"warehouse.GO/core/lock"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
	"warehouse.GO/service/stock"
)

func importEnv(t *testing.T) (*gorm.DB, *stock.Service) {
	t.Helper()
	db := testdb.Open(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	db.Create(&entity.Category{Code: "TOOLS", Name: "Tools", IsActive: true})
	zones := []entity.Zone{{Code: "A", Locations: []entity.Location{{Code: "A-1"}}}}
	db.Create(&entity.Warehouse{Code: "MAIN", Name: "Main", IsActive: true, Zones: datatypes.NewJSONType(zones)})
	db.Create(&entity.Product{SKU: "OLD-1", Name: "Old name", Unit: "box"})
	return db, stock.NewService(db, lock.New(nil, time.Second, logger), cache.NewCache(nil), logger)
}

func TestImportProducts(t *testing.T) {
	db, svc := importEnv(t)
	csvData := strings.Join([]string{
		"sku,name,category_code,selling_price,min_stock,status,warehouse_code,location_code,qty,color",
		"new-1,Hammer,tools,12.50,5,active,main,a-1,20,red",
		"OLD-1,Renamed,,,,,MAIN,,3,",
		"bad-1,Broken,,abc,,,,,,",
		",No sku,,,,,,,,",
		"new-2,Saw,NOPE,,,,,,,",
		"new-3,Drill,,,,,MAIN,Z-9,4,",
	}, "\n")

	res, err := ImportProducts(context.Background(), db, svc, strings.NewReader(csvData), ImportOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("ImportProducts: %v", err)
	}
	if res.TotalRows != 6 || res.Created != 2 || res.Updated != 1 || res.Skipped != 3 {
		t.Errorf("result = %+v, want total 6, created 2, updated 1, skipped 3", res)
	}
	if res.Stocked != 2 {
		t.Errorf("Stocked = %d, want 2", res.Stocked)
	}
	joined := strings.Join(res.Warnings, "\n")
	for _, want := range []string{`column "color"`, "invalid selling_price", "empty sku", `unknown category "NOPE"`, `"Z-9"`} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}

	var p entity.Product
	db.Where("sku = ?", "NEW-1").First(&p)
	if p.Name != "Hammer" || p.CategoryID == nil || p.SellingPrice.String() != "12.5" || p.MinStock != 5 {
		t.Errorf("NEW-1 = %+v", p)
	}
	var old entity.Product
	db.Where("sku = ?", "OLD-1").First(&old)
	if old.Name != "Renamed" || old.Unit != "box" {
		t.Errorf("OLD-1 = name %q unit %q, want Renamed/box", old.Name, old.Unit)
	}

	var inv entity.Inventory
	db.Where("product_id = ? AND location_code = ?", p.ID, "A-1").First(&inv)
	if inv.Quantity != 20 || inv.AvailableQuantity != 20 {
		t.Errorf("inventory = %+v, want 20", inv)
	}
	var moves int64
	db.Model(&entity.StockMovement{}).Where("type = ?", entity.MovementAdjustment).Count(&moves)
	if moves != 2 {
		t.Errorf("adjustment movements = %d, want 2", moves)
	}
}

func TestImportProducts_RequiresSKUColumn(t *testing.T) {
	db, svc := importEnv(t)
	if _, err := ImportProducts(context.Background(), db, svc, strings.NewReader("name\nx\n"), ImportOptions{}); err == nil {
		t.Error("expected error without sku column")
	}
}

func TestImportStock(t *testing.T) {
	db, svc := importEnv(t)
	items := []StockItemInput{
		{SKU: "old-1", WarehouseCode: "main", LocationCode: "a-1", Qty: 7},
		{SKU: "OLD-1", WarehouseCode: "MAIN", LocationCode: "A-1", Qty: 7},
		{SKU: "MISSING", WarehouseCode: "MAIN", Qty: 1},
		{SKU: "OLD-1", WarehouseCode: "OTHER", Qty: 1},
	}
	res, err := ImportStock(context.Background(), db, svc, nil, items)
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}
	if res.Imported != 1 || res.Unchanged != 1 || res.Skipped != 2 || len(res.Warnings) != 2 {
		t.Errorf("result = %+v, want imported 1, unchanged 1, skipped 2", res)
	}
}
