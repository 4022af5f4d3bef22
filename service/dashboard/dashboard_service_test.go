package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"warehouse.GO/core/cache"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
)

func seed(t *testing.T, s *Service) (entity.Product, entity.Warehouse) {
	t.Helper()
	p := entity.Product{SKU: "sku-1", Name: "Widget", MinStock: 10, CostPrice: decimal.NewFromInt(2)}
	w := entity.Warehouse{Code: "WH1", Name: "Main"}
	if err := s.db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	if err := s.db.Create(&w).Error; err != nil {
		t.Fatal(err)
	}
	inv := entity.Inventory{ProductID: p.ID, WarehouseID: w.ID, Quantity: 4, ReservedQuantity: 1}
	if err := s.db.Create(&inv).Error; err != nil {
		t.Fatal(err)
	}
	moves := []entity.StockMovement{
		{ProductID: p.ID, WarehouseID: w.ID, Type: entity.MovementInbound, Quantity: 6, BalanceAfter: 6},
		{ProductID: p.ID, WarehouseID: w.ID, Type: entity.MovementOutbound, Quantity: -2, BalanceBefore: 6, BalanceAfter: 4},
	}
	if err := s.db.Create(&moves).Error; err != nil {
		t.Fatal(err)
	}
	return p, w
}

func TestStats(t *testing.T) {
	s := NewService(testdb.Open(t), cache.NewCache(nil), time.Minute)
	seed(t, s)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Counts.Products != 1 || st.Counts.Warehouses != 1 {
		t.Errorf("counts = %+v", st.Counts)
	}
	if st.Inventory.TotalQuantity != 4 || st.Inventory.ReservedQuantity != 1 || st.Inventory.AvailableQuantity != 3 {
		t.Errorf("inventory = %+v", st.Inventory)
	}
	if st.Inventory.TotalValue != 8 {
		t.Errorf("value = %v, want 8", st.Inventory.TotalValue)
	}
	if st.Inventory.LowStockProducts != 1 {
		t.Errorf("lowStock = %d, want 1", st.Inventory.LowStockProducts)
	}
	if st.Documents.MovementsToday != 2 {
		t.Errorf("movementsToday = %d, want 2", st.Documents.MovementsToday)
	}
}

func TestStats_CachedUntilTagCleared(t *testing.T) {
	c := cache.NewCache(nil)
	s := NewService(testdb.Open(t), c, time.Minute)
	seed(t, s)
	ctx := context.Background()

	if _, err := s.Stats(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.db.Create(&entity.Category{Name: "New", Code: "NEW"}).Error; err != nil {
		t.Fatal(err)
	}
	st, _ := s.Stats(ctx)
	if st.Counts.Categories != 0 {
		t.Errorf("categories = %d, want cached 0", st.Counts.Categories)
	}
	c.DeleteByTag(ctx, "dashboard")
	st, _ = s.Stats(ctx)
	if st.Counts.Categories != 1 {
		t.Errorf("categories = %d, want 1 after invalidation", st.Counts.Categories)
	}
}

func TestRecentTrendTop(t *testing.T) {
	s := NewService(testdb.Open(t), cache.NewCache(nil), time.Minute)
	p, w := seed(t, s)
	ctx := context.Background()

	acts, err := s.RecentActivities(ctx, 0)
	if err != nil {
		t.Fatalf("RecentActivities: %v", err)
	}
	if len(acts) != 2 || acts[0].SKU != "SKU-1" || acts[0].WarehouseName != w.Name {
		t.Errorf("activities = %+v", acts)
	}

	trend, err := s.StockTrend(ctx, 3)
	if err != nil {
		t.Fatalf("StockTrend: %v", err)
	}
	if len(trend) != 3 {
		t.Fatalf("len(trend) = %d, want 3", len(trend))
	}
	today := trend[2]
	if today.Inbound != 6 || today.Outbound != 2 {
		t.Errorf("today = %+v, want inbound 6 outbound 2", today)
	}

	top, err := s.TopProducts(ctx, 0, 0)
	if err != nil {
		t.Fatalf("TopProducts: %v", err)
	}
	if len(top) != 1 || top[0].ProductID != p.ID || top[0].Quantity != 2 {
		t.Errorf("top = %+v", top)
	}

	low, err := s.LowStock(ctx, 5)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 || low[0].Shortage != 6 {
		t.Errorf("low = %+v", low)
	}
}
