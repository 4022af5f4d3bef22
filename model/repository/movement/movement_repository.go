package movement

import (
	"time"

	"gorm.io/gorm"

	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

type Filter struct {
	query.Page    `mapstructure:",squash"`
	ProductID     *uint     `mapstructure:"productId"`
	WarehouseID   *uint     `mapstructure:"warehouseId"`
	Type          string    `mapstructure:"type"`
	ReferenceType string    `mapstructure:"referenceType"`
	ReferenceID   *uint     `mapstructure:"referenceId"`
	From          time.Time `mapstructure:"from"`
	To            time.Time `mapstructure:"to"`
}

var sortColumns = map[string]string{
	"createdAt": "stock_movements.created_at",
	"quantity":  "stock_movements.quantity",
	"type":      "stock_movements.type",
}

// DailyFlow is the inbound and outbound quantity of one day.
type DailyFlow struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

// ProductFlow is the quantity moved for one product.
type ProductFlow struct {
	ProductID uint   `json:"productId"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

// MovementRepository only appends and reads; there is no update or delete.
type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) Create(m *entity.StockMovement) error {
	return r.db.Create(m).Error
}

func (r *MovementRepository) FindByID(id uint) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := r.db.Preload("Product").Preload("Warehouse").Preload("CreatedBy").First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepository) filtered(f Filter) *gorm.DB {
	q := r.db.Model(&entity.StockMovement{})
	if f.ProductID != nil {
		q = q.Where("stock_movements.product_id = ?", *f.ProductID)
	}
	if f.WarehouseID != nil {
		q = q.Where("stock_movements.warehouse_id = ?", *f.WarehouseID)
	}
	if f.Type != "" {
		q = q.Where("stock_movements.type = ?", f.Type)
	}
	if f.ReferenceType != "" {
		q = q.Where("stock_movements.reference_type = ?", f.ReferenceType)
	}
	if f.ReferenceID != nil {
		q = q.Where("stock_movements.reference_id = ?", *f.ReferenceID)
	}
	if !f.From.IsZero() {
		q = q.Where("stock_movements.created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("stock_movements.created_at <= ?", query.EndOfDay(f.To))
	}
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("stock_movements.reference_number", "stock_movements.reason"), like, like)
	}
	return q
}

func (r *MovementRepository) List(f Filter) ([]entity.StockMovement, int64, error) {
	order := f.Order(sortColumns, "stock_movements.created_at DESC") + ", stock_movements.id DESC"
	return repository.FindPage[entity.StockMovement](r.filtered(f), f.Page, order, "Product", "Warehouse", "CreatedBy")
}

// All returns every movement matching f, newest first, up to max rows.
func (r *MovementRepository) All(f Filter, max int) ([]entity.StockMovement, error) {
	items := make([]entity.StockMovement, 0)
	err := r.filtered(f).Preload("Product").Preload("Warehouse").
		Order("stock_movements.created_at DESC, stock_movements.id DESC").
		Limit(max).Find(&items).Error
	return items, err
}

// Recent returns the latest movements with product, warehouse and user.
func (r *MovementRepository) Recent(limit int) ([]entity.StockMovement, error) {
	items := make([]entity.StockMovement, 0, limit)
	err := r.db.Preload("Product").Preload("Warehouse").Preload("CreatedBy").
		Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error
	return items, err
}

// DailyFlows buckets inbound and outbound quantities per local day since from.
// Bucketing happens here rather than in SQL so it works the same on MySQL and SQLite.
func (r *MovementRepository) DailyFlows(from time.Time, days int) ([]DailyFlow, error) {
	var rows []struct {
		Type      entity.MovementType
		Quantity  int64
		CreatedAt time.Time
	}
	err := r.db.Model(&entity.StockMovement{}).
		Select("type, quantity, created_at").
		Where("created_at >= ? AND type IN ?", from, []entity.MovementType{
			entity.MovementInbound, entity.MovementOutbound, entity.MovementTransferIn, entity.MovementTransferOut,
		}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]DailyFlow, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := from.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = DailyFlow{Date: d}
		index[d] = i
	}
	for _, row := range rows {
		i, ok := index[row.CreatedAt.In(from.Location()).Format("2006-01-02")]
		if !ok {
			continue
		}
		switch row.Type {
		case entity.MovementInbound, entity.MovementTransferIn:
			out[i].Inbound += row.Quantity
		default:
			out[i].Outbound -= row.Quantity
		}
	}
	return out, nil
}

// TopOutbound ranks products by shipped quantity since from.
func (r *MovementRepository) TopOutbound(from time.Time, limit int) ([]ProductFlow, error) {
	rows := make([]ProductFlow, 0, limit)
	err := r.db.Table("stock_movements AS m").
		Select("m.product_id, p.sku, p.name, -SUM(m.quantity) AS quantity").
		Joins("JOIN products AS p ON p.id = m.product_id").
		Where("m.type = ? AND m.created_at >= ?", entity.MovementOutbound, from).
		Group("m.product_id, p.sku, p.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CountSince counts movements of the given types created at or after from.
func (r *MovementRepository) CountSince(from time.Time, types ...entity.MovementType) (int64, error) {
	var n int64
	q := r.db.Model(&entity.StockMovement{}).Where("created_at >= ?", from)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	err := q.Count(&n).Error
	return n, err
}
