package product

import (
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

type Filter struct {
	query.Page `mapstructure:",squash"`
	CategoryID *uint  `mapstructure:"categoryId"`
	Status     string `mapstructure:"status"`
}

var sortColumns = map[string]string{
	"sku":          "sku",
	"name":         "name",
	"costPrice":    "cost_price",
	"sellingPrice": "selling_price",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// StockSummary is the stock of a product summed over all warehouses.
type StockSummary struct {
	Quantity          int64 `json:"quantity"`
	ReservedQuantity  int64 `json:"reservedQuantity"`
	AvailableQuantity int64 `json:"availableQuantity"`
	Warehouses        int64 `json:"warehouses"`
}

// LowStockRow is a product at or below its minimum stock.
type LowStockRow struct {
	ProductID uint   `json:"productId"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	MinStock  int64  `json:"minStock"`
	Quantity  int64  `json:"quantity"`
	Available int64  `json:"availableQuantity"`
	Shortage  int64  `json:"shortage"`
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(p *entity.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) FindByID(id uint) (*entity.Product, error) {
	var p entity.Product
	if err := r.db.Preload("Category").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindBySKU(sku string) (*entity.Product, error) {
	var p entity.Product
	if err := r.db.Preload("Category").Where("sku = ?", entity.NormalizeSKU(sku)).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs returns the products with the given ids keyed by id.
func (r *ProductRepository) FindByIDs(ids []uint) (map[uint]entity.Product, error) {
	out := make(map[uint]entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []entity.Product
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepository) List(f Filter) ([]entity.Product, int64, error) {
	q := r.db.Model(&entity.Product{})
	if f.Search != "" {
		q = r.whereSearch(q, f.Search)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return repository.FindPage[entity.Product](q, f.Page, f.Order(sortColumns, "created_at DESC"), "Category")
}

// Search is the SQL fallback of the product search index.
func (r *ProductRepository) Search(term string, p query.Page) ([]entity.Product, int64, error) {
	q := r.whereSearch(r.db.Model(&entity.Product{}), term)
	return repository.FindPage[entity.Product](q, p, "name ASC", "Category")
}

func (r *ProductRepository) whereSearch(q *gorm.DB, term string) *gorm.DB {
	like := query.Like(term)
	return q.Where(query.LikeAny("sku", "name", "barcode", "description"), like, like, like, like)
}

func (r *ProductRepository) Update(id uint, fields map[string]interface{}) error {
	return repository.UpdateFields(r.db, &entity.Product{}, id, fields)
}

// Delete removes a product without stock that no open document references.
func (r *ProductRepository) Delete(id uint) error {
	if _, err := r.FindByID(id); err != nil {
		return err
	}
	s, err := r.StockSummary(id)
	if err != nil {
		return err
	}
	if s.Quantity > 0 {
		return apperror.BadRequest("product still has stock")
	}
	open := []entity.DocumentStatus{entity.StatusDraft, entity.StatusPending, entity.StatusApproved}
	var n int64
	err = r.db.Model(&entity.InboundItem{}).
		Joins("JOIN inbounds ON inbounds.id = inbound_items.inbound_id").
		Where("inbound_items.product_id = ? AND inbounds.status IN ?", id, open).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		err = r.db.Model(&entity.OutboundItem{}).
			Joins("JOIN outbounds ON outbounds.id = outbound_items.outbound_id").
			Where("outbound_items.product_id = ? AND outbounds.status IN ?", id, open).
			Count(&n).Error
		if err != nil {
			return err
		}
	}
	if n > 0 {
		return apperror.BadRequest("product is used by an open inbound or outbound")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&entity.Inventory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Product{}, id).Error
	})
}

func (r *ProductRepository) StockSummary(id uint) (StockSummary, error) {
	var s StockSummary
	err := r.db.Model(&entity.Inventory{}).
		Select("COALESCE(SUM(quantity),0) AS quantity, COALESCE(SUM(reserved_quantity),0) AS reserved_quantity, "+
			"COALESCE(SUM(available_quantity),0) AS available_quantity, COUNT(DISTINCT warehouse_id) AS warehouses").
		Where("product_id = ?", id).
		Scan(&s).Error
	return s, err
}

// LowStock lists active products whose total quantity is at or below minStock, most short first.
// limit <= 0 returns all of them.
func (r *ProductRepository) LowStock(limit int) ([]LowStockRow, error) {
	rows := make([]LowStockRow, 0)
	q := r.db.Table("products AS p").
		Select("p.id AS product_id, p.sku, p.name, p.unit, p.min_stock, "+
			"COALESCE(SUM(i.quantity),0) AS quantity, COALESCE(SUM(i.available_quantity),0) AS available, "+
			"p.min_stock - COALESCE(SUM(i.quantity),0) AS shortage").
		Joins("LEFT JOIN inventories AS i ON i.product_id = p.id").
		Where("p.status = ? AND p.min_stock > 0", entity.ProductActive).
		Group("p.id, p.sku, p.name, p.unit, p.min_stock").
		Having("COALESCE(SUM(i.quantity),0) <= p.min_stock").
		Order("shortage DESC, p.sku ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

// Each calls fn with batches of products in id order.
func (r *ProductRepository) Each(batch int, fn func([]entity.Product) error) error {
	var items []entity.Product
	res := r.db.Preload("Category").FindInBatches(&items, batch, func(tx *gorm.DB, _ int) error {
		return fn(items)
	})
	return res.Error
}

func (r *ProductRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Product{}).Count(&n).Error
	return n, err
}

// OutOfStockCount counts active products with no stock at all.
func (r *ProductRepository) OutOfStockCount() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Product{}).
		Where("status = ?", entity.ProductActive).
		Where("NOT EXISTS (SELECT 1 FROM inventories i WHERE i.product_id = products.id AND i.quantity > 0)").
		Count(&n).Error
	return n, err
}
