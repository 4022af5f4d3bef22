// Package dashboard computes the home screen figures. Results are cached under the "dashboard"
// tag, which the stock service clears after every committed stock change.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"warehouse.GO/core/cache"
	"warehouse.GO/model/entity"
	categoryRepo "warehouse.GO/model/repository/category"
	customerRepo "warehouse.GO/model/repository/customer"
	inboundRepo "warehouse.GO/model/repository/inbound"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	movementRepo "warehouse.GO/model/repository/movement"
	outboundRepo "warehouse.GO/model/repository/outbound"
	productRepo "warehouse.GO/model/repository/product"
	supplierRepo "warehouse.GO/model/repository/supplier"
	userRepo "warehouse.GO/model/repository/user"
	warehouseRepo "warehouse.GO/model/repository/warehouse"
	"warehouse.GO/service/stock"
)

type Counts struct {
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
	Customers  int64 `json:"customers"`
	Suppliers  int64 `json:"suppliers"`
	Warehouses int64 `json:"warehouses"`
	Users      int64 `json:"users"`
}

type InventoryStats struct {
	TotalQuantity     int64   `json:"totalQuantity"`
	ReservedQuantity  int64   `json:"reservedQuantity"`
	AvailableQuantity int64   `json:"availableQuantity"`
	TotalValue        float64 `json:"totalValue"`
	LowStockProducts  int64   `json:"lowStockProducts"`
	OutOfStock        int64   `json:"outOfStockProducts"`
}

type DocumentStats struct {
	PendingInbounds    int64 `json:"pendingInbounds"`
	PendingOutbounds   int64 `json:"pendingOutbounds"`
	CompletedInbounds  int64 `json:"completedInboundsToday"`
	CompletedOutbounds int64 `json:"completedOutboundsToday"`
	MovementsToday     int64 `json:"movementsToday"`
}

type Stats struct {
	Counts      Counts         `json:"counts"`
	Inventory   InventoryStats `json:"inventory"`
	Documents   DocumentStats  `json:"documents"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// Activity is one recent stock movement with display names.
type Activity struct {
	ID              uint                `json:"id"`
	Type            entity.MovementType `json:"type"`
	Quantity        int64               `json:"quantity"`
	ProductID       uint                `json:"productId"`
	SKU             string              `json:"sku"`
	ProductName     string              `json:"productName"`
	WarehouseID     uint                `json:"warehouseId"`
	WarehouseName   string              `json:"warehouseName"`
	LocationCode    string              `json:"locationCode,omitempty"`
	ReferenceType   string              `json:"referenceType,omitempty"`
	ReferenceNumber string              `json:"referenceNumber,omitempty"`
	CreatedBy       string              `json:"createdBy,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type Service struct {
	db    *gorm.DB
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewService(db *gorm.DB, c *cache.Cache, ttl time.Duration) *Service {
	return &Service{db: db, cache: c, ttl: ttl, now: time.Now}
}

func (s *Service) tags() []string { return []string{stock.DashboardTag} }

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Stats runs the count queries concurrently.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return cache.Remember(ctx, s.cache, cache.Key("dashboard", "stats"), s.ttl, s.tags(), func() (Stats, error) {
		return s.computeStats(ctx)
	})
}

func (s *Service) computeStats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	today := startOfDay(s.now())
	st := Stats{GeneratedAt: s.now()}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() (err error) { st.Counts.Products, err = productRepo.NewProductRepository(db).Count(); return })
	g.Go(func() (err error) { st.Counts.Categories, err = categoryRepo.NewCategoryRepository(db).Count(); return })
	g.Go(func() (err error) { st.Counts.Customers, err = customerRepo.NewCustomerRepository(db).Count(); return })
	g.Go(func() (err error) { st.Counts.Suppliers, err = supplierRepo.NewSupplierRepository(db).Count(); return })
	g.Go(func() (err error) { st.Counts.Warehouses, err = warehouseRepo.NewWarehouseRepository(db).Count(); return })
	g.Go(func() (err error) { st.Counts.Users, err = userRepo.NewUserRepository(db).Count(); return })
	g.Go(func() error {
		t, err := inventoryRepo.NewInventoryRepository(db).Totals(0)
		if err != nil {
			return err
		}
		st.Inventory.TotalQuantity = t.Quantity
		st.Inventory.ReservedQuantity = t.Reserved
		st.Inventory.AvailableQuantity = t.Available
		st.Inventory.TotalValue = t.Value
		return nil
	})
	g.Go(func() error {
		rows, err := productRepo.NewProductRepository(db).LowStock(0)
		st.Inventory.LowStockProducts = int64(len(rows))
		return err
	})
	g.Go(func() (err error) {
		st.Inventory.OutOfStock, err = productRepo.NewProductRepository(db).OutOfStockCount()
		return
	})
	g.Go(func() (err error) {
		st.Documents.PendingInbounds, err = inboundRepo.NewInboundRepository(db).CountByStatus(entity.StatusPending, entity.StatusApproved)
		return
	})
	g.Go(func() (err error) {
		st.Documents.PendingOutbounds, err = outboundRepo.NewOutboundRepository(db).CountByStatus(entity.StatusPending, entity.StatusApproved)
		return
	})
	g.Go(func() (err error) {
		st.Documents.CompletedInbounds, err = inboundRepo.NewInboundRepository(db).CountCompletedSince(today)
		return
	})
	g.Go(func() (err error) {
		st.Documents.CompletedOutbounds, err = outboundRepo.NewOutboundRepository(db).CountCompletedSince(today)
		return
	})
	g.Go(func() (err error) {
		st.Documents.MovementsToday, err = movementRepo.NewMovementRepository(db).CountSince(today)
		return
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// RecentActivities lists the latest movements.
func (s *Service) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	limit = clamp(limit, 10, 100)
	return cache.Remember(ctx, s.cache, cache.Key("dashboard", "recent", limit), s.ttl, s.tags(), func() ([]Activity, error) {
		moves, err := movementRepo.NewMovementRepository(s.db.WithContext(ctx)).Recent(limit)
		if err != nil {
			return nil, err
		}
		out := make([]Activity, 0, len(moves))
		for _, m := range moves {
			a := Activity{
				ID:              m.ID,
				Type:            m.Type,
				Quantity:        m.Quantity,
				ProductID:       m.ProductID,
				WarehouseID:     m.WarehouseID,
				LocationCode:    m.LocationCode,
				ReferenceType:   m.ReferenceType,
				ReferenceNumber: m.ReferenceNumber,
				CreatedAt:       m.CreatedAt,
			}
			if m.Product != nil {
				a.SKU, a.ProductName = m.Product.SKU, m.Product.Name
			}
			if m.Warehouse != nil {
				a.WarehouseName = m.Warehouse.Name
			}
			if m.CreatedBy != nil {
				a.CreatedBy = m.CreatedBy.Username
			}
			out = append(out, a)
		}
		return out, nil
	})
}

// StockTrend returns per-day inbound and outbound quantities for the last days, today included.
func (s *Service) StockTrend(ctx context.Context, days int) ([]movementRepo.DailyFlow, error) {
	days = clamp(days, 7, 90)
	from := startOfDay(s.now()).AddDate(0, 0, -(days - 1))
	return cache.Remember(ctx, s.cache, cache.Key("dashboard", "trend", days), s.ttl, s.tags(), func() ([]movementRepo.DailyFlow, error) {
		return movementRepo.NewMovementRepository(s.db.WithContext(ctx)).DailyFlows(from, days)
	})
}

func (s *Service) LowStock(ctx context.Context, limit int) ([]productRepo.LowStockRow, error) {
	limit = clamp(limit, 10, 100)
	return cache.Remember(ctx, s.cache, cache.Key("dashboard", "low", limit), s.ttl, s.tags(), func() ([]productRepo.LowStockRow, error) {
		return productRepo.NewProductRepository(s.db.WithContext(ctx)).LowStock(limit)
	})
}

// TopProducts ranks products by outbound quantity over the last days.
func (s *Service) TopProducts(ctx context.Context, days, limit int) ([]movementRepo.ProductFlow, error) {
	days = clamp(days, 30, 365)
	limit = clamp(limit, 5, 50)
	from := startOfDay(s.now()).AddDate(0, 0, -(days - 1))
	return cache.Remember(ctx, s.cache, cache.Key("dashboard", "top", days, limit), s.ttl, s.tags(), func() ([]movementRepo.ProductFlow, error) {
		return movementRepo.NewMovementRepository(s.db.WithContext(ctx)).TopOutbound(from, limit)
	})
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
