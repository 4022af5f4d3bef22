package inventory

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

// ErrNotEnough is returned by a conditional write whose guard did not hold.
var ErrNotEnough = errors.New("inventory: not enough stock")

// ErrChanged is returned by Set when the row moved since it was read.
var ErrChanged = errors.New("inventory: quantity changed concurrently")

type Filter struct {
	query.Page   `mapstructure:",squash"`
	WarehouseID  *uint  `mapstructure:"warehouseId"`
	ProductID    *uint  `mapstructure:"productId"`
	CategoryID   *uint  `mapstructure:"categoryId"`
	LocationCode string `mapstructure:"locationCode"`
	LowStock     bool   `mapstructure:"lowStock"`
}

var sortColumns = map[string]string{
	"quantity":          "inventories.quantity",
	"reservedQuantity":  "inventories.reserved_quantity",
	"availableQuantity": "inventories.available_quantity",
	"locationCode":      "inventories.location_code",
	"updatedAt":         "inventories.updated_at",
}

// Key identifies one inventory row.
type Key struct {
	ProductID    uint
	WarehouseID  uint
	LocationCode string
}

// Balance is a row's quantities after a write.
type Balance struct {
	Quantity  int64
	Reserved  int64
	Available int64
}

// Totals are stock sums over a set of rows.
type Totals struct {
	Quantity  int64   `json:"quantity"`
	Reserved  int64   `json:"reservedQuantity"`
	Available int64   `json:"availableQuantity"`
	Value     float64 `json:"value"`
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) FindByID(id uint) (*entity.Inventory, error) {
	var inv entity.Inventory
	if err := r.db.Preload("Product").Preload("Warehouse").First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InventoryRepository) filtered(f Filter) *gorm.DB {
	q := r.db.Model(&entity.Inventory{}).Joins("JOIN products ON products.id = inventories.product_id")
	if f.WarehouseID != nil {
		q = q.Where("inventories.warehouse_id = ?", *f.WarehouseID)
	}
	if f.ProductID != nil {
		q = q.Where("inventories.product_id = ?", *f.ProductID)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.LocationCode != "" {
		q = q.Where("inventories.location_code = ?", f.LocationCode)
	}
	if f.LowStock {
		q = q.Where("products.min_stock > 0 AND inventories.quantity <= products.min_stock")
	}
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("products.sku", "products.name"), like, like)
	}
	return q
}

func (r *InventoryRepository) List(f Filter) ([]entity.Inventory, int64, error) {
	order := f.Order(sortColumns, "products.sku ASC, inventories.location_code ASC")
	return repository.FindPage[entity.Inventory](r.filtered(f), f.Page, order, "Product", "Warehouse")
}

// All returns every row matching f with product and warehouse, up to max rows.
func (r *InventoryRepository) All(f Filter, max int) ([]entity.Inventory, error) {
	items := make([]entity.Inventory, 0)
	err := r.filtered(f).Preload("Product").Preload("Warehouse").
		Order("products.sku ASC, inventories.warehouse_id ASC, inventories.location_code ASC").
		Limit(max).Find(&items).Error
	return items, err
}

// ByProduct returns every row of a product across warehouses.
func (r *InventoryRepository) ByProduct(productID uint) ([]entity.Inventory, error) {
	items := make([]entity.Inventory, 0)
	err := r.db.Preload("Warehouse").
		Where("product_id = ?", productID).
		Order("warehouse_id ASC, location_code ASC").
		Find(&items).Error
	return items, err
}

// Get returns the row for k, or gorm.ErrRecordNotFound.
func (r *InventoryRepository) Get(k Key) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.db.Where("product_id = ? AND warehouse_id = ? AND location_code = ?", k.ProductID, k.WarehouseID, k.LocationCode).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AvailableByWarehouse sums available stock per product in one warehouse over all locations.
func (r *InventoryRepository) AvailableByWarehouse(warehouseID uint, productIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	rows, err := r.db.Model(&entity.Inventory{}).
		Select("product_id, COALESCE(SUM(available_quantity),0)").
		Where("warehouse_id = ? AND product_id IN ?", warehouseID, productIDs).
		Group("product_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		result[id] = qty
	}
	return result, rows.Err()
}

// Totals sums stock, optionally limited to one warehouse. Value is quantity times cost price.
func (r *InventoryRepository) Totals(warehouseID uint) (Totals, error) {
	var t Totals
	q := r.db.Table("inventories AS i").
		Select("COALESCE(SUM(i.quantity),0) AS quantity, COALESCE(SUM(i.reserved_quantity),0) AS reserved, " +
			"COALESCE(SUM(i.available_quantity),0) AS available, COALESCE(SUM(i.quantity * p.cost_price),0) AS value").
		Joins("JOIN products AS p ON p.id = i.product_id")
	if warehouseID > 0 {
		q = q.Where("i.warehouse_id = ?", warehouseID)
	}
	err := q.Scan(&t).Error
	return t, err
}

// Reconcile recomputes available_quantity on rows where it drifted from quantity - reserved_quantity.
func (r *InventoryRepository) Reconcile() (int64, error) {
	res := r.db.Session(&gorm.Session{SkipHooks: true}).Model(&entity.Inventory{}).
		Where("available_quantity <> quantity - reserved_quantity").
		Update("available_quantity", gorm.Expr("quantity - reserved_quantity"))
	return res.RowsAffected, res.Error
}

// ensure creates an empty row for k if none exists.
func (r *InventoryRepository) ensure(k Key) error {
	row := entity.Inventory{ProductID: k.ProductID, WarehouseID: k.WarehouseID, LocationCode: k.LocationCode}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *InventoryRepository) where(k Key) *gorm.DB {
	return r.db.Model(&entity.Inventory{}).
		Where("product_id = ? AND warehouse_id = ? AND location_code = ?", k.ProductID, k.WarehouseID, k.LocationCode)
}

func (r *InventoryRepository) balance(k Key) (Balance, error) {
	inv, err := r.Get(k)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Quantity: inv.Quantity, Reserved: inv.ReservedQuantity, Available: inv.AvailableQuantity}, nil
}

// apply runs a guarded update and returns the row's balance afterwards.
// The balance is read after the update so it reflects the row as locked by this transaction.
func (r *InventoryRepository) apply(k Key, guard string, guardArg interface{}, cols map[string]interface{}) (Balance, error) {
	q := r.where(k)
	if guard != "" {
		q = q.Where(guard, guardArg)
	}
	cols["updated_at"] = time.Now()
	res := q.UpdateColumns(cols)
	if res.Error != nil {
		return Balance{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Balance{}, ErrNotEnough
	}
	return r.balance(k)
}

// Increase adds qty to on-hand stock, creating the row when needed.
func (r *InventoryRepository) Increase(k Key, qty int64, at time.Time) (Balance, error) {
	if err := r.ensure(k); err != nil {
		return Balance{}, err
	}
	return r.apply(k, "", nil, map[string]interface{}{
		"quantity":           gorm.Expr("quantity + ?", qty),
		"available_quantity": gorm.Expr("available_quantity + ?", qty),
		"last_stock_in":      at,
	})
}

// Decrease removes qty of unreserved stock. ErrNotEnough when available < qty.
func (r *InventoryRepository) Decrease(k Key, qty int64, at time.Time) (Balance, error) {
	return r.apply(k, "available_quantity >= ?", qty, map[string]interface{}{
		"quantity":           gorm.Expr("quantity - ?", qty),
		"available_quantity": gorm.Expr("available_quantity - ?", qty),
		"last_stock_out":     at,
	})
}

// Reserve moves qty from available to reserved. ErrNotEnough when available < qty.
func (r *InventoryRepository) Reserve(k Key, qty int64) (Balance, error) {
	return r.apply(k, "available_quantity >= ?", qty, map[string]interface{}{
		"reserved_quantity":  gorm.Expr("reserved_quantity + ?", qty),
		"available_quantity": gorm.Expr("available_quantity - ?", qty),
	})
}

// Release returns qty of reserved stock to available.
func (r *InventoryRepository) Release(k Key, qty int64) (Balance, error) {
	return r.apply(k, "reserved_quantity >= ?", qty, map[string]interface{}{
		"reserved_quantity":  gorm.Expr("reserved_quantity - ?", qty),
		"available_quantity": gorm.Expr("available_quantity + ?", qty),
	})
}

// Consume ships qty of previously reserved stock.
func (r *InventoryRepository) Consume(k Key, qty int64, at time.Time) (Balance, error) {
	return r.apply(k, "reserved_quantity >= ?", qty, map[string]interface{}{
		"quantity":          gorm.Expr("quantity - ?", qty),
		"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
		"last_stock_out":    at,
	})
}

// Set replaces on-hand quantity when it still equals expected. The reserved part must fit.
func (r *InventoryRepository) Set(k Key, expected, qty int64, at time.Time) (Balance, error) {
	if err := r.ensure(k); err != nil {
		return Balance{}, err
	}
	cols := map[string]interface{}{
		"quantity":           qty,
		"available_quantity": gorm.Expr("? - reserved_quantity", qty),
		"updated_at":         time.Now(),
	}
	if qty > expected {
		cols["last_stock_in"] = at
	} else {
		cols["last_stock_out"] = at
	}
	res := r.where(k).Where("quantity = ? AND reserved_quantity <= ?", expected, qty).UpdateColumns(cols)
	if res.Error != nil {
		return Balance{}, res.Error
	}
	if res.RowsAffected == 0 {
		cur, err := r.balance(k)
		if err != nil {
			return Balance{}, err
		}
		if cur.Quantity != expected {
			return cur, ErrChanged
		}
		return cur, ErrNotEnough
	}
	return r.balance(k)
}
