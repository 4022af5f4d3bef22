package jobs

import (
	"context"
	"testing"
	"time"

	"warehouse.GO/cron"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
)

func TestBuiltinJobsRegistered(t *testing.T) {
	want := map[string]string{
		TokensPurge:   "@hourly",
		StockLowAlert: "*/30 * * * *",
		SearchReindex: "0 2 * * *",
	}
	for name, schedule := range want {
		j, ok := cron.Lookup(name)
		if !ok {
			t.Errorf("job %s not registered", name)
			continue
		}
		if j.Schedule != schedule {
			t.Errorf("%s schedule = %q, want %q", name, j.Schedule, schedule)
		}
	}
}

func TestPurgeTokens(t *testing.T) {
	db := testdb.Open(t)
	now := time.Now()
	db.Create(&entity.TokenBlacklist{JTI: "old", ExpiresAt: now.Add(-time.Minute)})
	db.Create(&entity.TokenBlacklist{JTI: "live", ExpiresAt: now.Add(time.Hour)})

	if err := PurgeTokens(context.Background(), db); err != nil {
		t.Fatalf("PurgeTokens: %v", err)
	}
	var left []entity.TokenBlacklist
	db.Find(&left)
	if len(left) != 1 || left[0].JTI != "live" {
		t.Errorf("left = %+v, want only live", left)
	}
}

func TestLowStockAlert(t *testing.T) {
	db := testdb.Open(t)
	db.Create(&entity.Product{SKU: "LOW", Name: "Low", Status: entity.ProductActive, MinStock: 5})
	if err := LowStockAlert(context.Background(), db); err != nil {
		t.Fatalf("LowStockAlert: %v", err)
	}
}

func TestReindexProducts_NoSearchHost(t *testing.T) {
	db := testdb.Open(t)
	t.Setenv("ELASTICSEARCH_HOST", "")
	if err := ReindexProducts(context.Background(), db); err != nil {
		t.Fatalf("ReindexProducts: %v", err)
	}
}
