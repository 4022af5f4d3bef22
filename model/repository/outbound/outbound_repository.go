package outbound

import (
	"time"

	"gorm.io/gorm"

	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

type Filter struct {
	query.Page  `mapstructure:",squash"`
	Status      string    `mapstructure:"status"`
	Type        string    `mapstructure:"type"`
	WarehouseID *uint     `mapstructure:"warehouseId"`
	CustomerID  *uint     `mapstructure:"customerId"`
	From        time.Time `mapstructure:"from"`
	To          time.Time `mapstructure:"to"`
}

var sortColumns = map[string]string{
	"number":       "number",
	"status":       "status",
	"expectedDate": "expected_date",
	"totalAmount":  "total_amount",
	"createdAt":    "created_at",
}

type OutboundRepository struct {
	db *gorm.DB
}

func NewOutboundRepository(db *gorm.DB) *OutboundRepository {
	return &OutboundRepository{db: db}
}

// Create inserts the document with its items.
func (r *OutboundRepository) Create(out *entity.Outbound) error {
	return r.db.Create(out).Error
}

func (r *OutboundRepository) FindByID(id uint) (*entity.Outbound, error) {
	var out entity.Outbound
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").Preload("Warehouse").Preload("Customer").
		Preload("CreatedBy").Preload("ApprovedBy").
		First(&out, id).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OutboundRepository) filtered(f Filter) *gorm.DB {
	q := r.db.Model(&entity.Outbound{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *f.WarehouseID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at <= ?", query.EndOfDay(f.To))
	}
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("number", "reference_number", "notes"), like, like, like)
	}
	return q
}

func (r *OutboundRepository) List(f Filter) ([]entity.Outbound, int64, error) {
	return repository.FindPage[entity.Outbound](r.filtered(f), f.Page, f.Order(sortColumns, "created_at DESC"),
		"Warehouse", "Customer", "CreatedBy")
}

// All returns every document matching f with items, newest first, up to max rows.
func (r *OutboundRepository) All(f Filter, max int) ([]entity.Outbound, error) {
	items := make([]entity.Outbound, 0)
	err := r.filtered(f).Preload("Warehouse").Preload("Customer").
		Order("created_at DESC").Limit(max).Find(&items).Error
	return items, err
}

// ReplaceItems saves header columns of out and swaps its items for out.Items.
func (r *OutboundRepository) ReplaceItems(out *entity.Outbound, header map[string]interface{}) error {
	if len(header) > 0 {
		if err := r.db.Model(&entity.Outbound{}).Where("id = ?", out.ID).Updates(header).Error; err != nil {
			return err
		}
	}
	if err := r.db.Where("outbound_id = ?", out.ID).Delete(&entity.OutboundItem{}).Error; err != nil {
		return err
	}
	for i := range out.Items {
		out.Items[i].ID = 0
		out.Items[i].OutboundID = out.ID
	}
	if len(out.Items) == 0 {
		return nil
	}
	return r.db.Create(&out.Items).Error
}

// Transition moves the document from one status to another and sets extra columns.
// It reports false when the document was not in status from.
func (r *OutboundRepository) Transition(id uint, from, to entity.DocumentStatus, extra map[string]interface{}) (bool, error) {
	cols := map[string]interface{}{"status": to}
	for k, v := range extra {
		cols[k] = v
	}
	res := r.db.Model(&entity.Outbound{}).Where("id = ? AND status = ?", id, from).Updates(cols)
	return res.RowsAffected == 1, res.Error
}

// Delete removes the document and its items when it is still in status.
func (r *OutboundRepository) Delete(id uint, status entity.DocumentStatus) (bool, error) {
	res := r.db.Where("id = ? AND status = ?", id, status).Delete(&entity.Outbound{})
	if res.Error != nil || res.RowsAffected == 0 {
		return false, res.Error
	}
	return true, r.db.Where("outbound_id = ?", id).Delete(&entity.OutboundItem{}).Error
}

func (r *OutboundRepository) CountByStatus(status ...entity.DocumentStatus) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Outbound{}).Where("status IN ?", status).Count(&n).Error
	return n, err
}

func (r *OutboundRepository) CountCompletedSince(from time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Outbound{}).
		Where("status = ? AND completed_at >= ?", entity.StatusCompleted, from).
		Count(&n).Error
	return n, err
}
