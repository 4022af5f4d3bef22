package inbound

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
	SupplierID  *uint     `mapstructure:"supplierId"`
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

type InboundRepository struct {
	db *gorm.DB
}

func NewInboundRepository(db *gorm.DB) *InboundRepository {
	return &InboundRepository{db: db}
}

// Create inserts the document with its items.
func (r *InboundRepository) Create(in *entity.Inbound) error {
	return r.db.Create(in).Error
}

func (r *InboundRepository) FindByID(id uint) (*entity.Inbound, error) {
	var in entity.Inbound
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").Preload("Warehouse").Preload("Supplier").
		Preload("CreatedBy").Preload("ApprovedBy").
		First(&in, id).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *InboundRepository) filtered(f Filter) *gorm.DB {
	q := r.db.Model(&entity.Inbound{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *f.WarehouseID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
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

func (r *InboundRepository) List(f Filter) ([]entity.Inbound, int64, error) {
	return repository.FindPage[entity.Inbound](r.filtered(f), f.Page, f.Order(sortColumns, "created_at DESC"),
		"Warehouse", "Supplier", "CreatedBy")
}

// All returns every document matching f with items, newest first, up to max rows.
func (r *InboundRepository) All(f Filter, max int) ([]entity.Inbound, error) {
	items := make([]entity.Inbound, 0)
	err := r.filtered(f).Preload("Warehouse").Preload("Supplier").
		Order("created_at DESC").Limit(max).Find(&items).Error
	return items, err
}

// ReplaceItems saves header columns of in and swaps its items for in.Items.
func (r *InboundRepository) ReplaceItems(in *entity.Inbound, header map[string]interface{}) error {
	if len(header) > 0 {
		if err := r.db.Model(&entity.Inbound{}).Where("id = ?", in.ID).Updates(header).Error; err != nil {
			return err
		}
	}
	if err := r.db.Where("inbound_id = ?", in.ID).Delete(&entity.InboundItem{}).Error; err != nil {
		return err
	}
	for i := range in.Items {
		in.Items[i].ID = 0
		in.Items[i].InboundID = in.ID
	}
	if len(in.Items) == 0 {
		return nil
	}
	return r.db.Create(&in.Items).Error
}

// Transition moves the document from one status to another and sets extra columns.
// It reports false when the document was not in status from.
func (r *InboundRepository) Transition(id uint, from, to entity.DocumentStatus, extra map[string]interface{}) (bool, error) {
	cols := map[string]interface{}{"status": to}
	for k, v := range extra {
		cols[k] = v
	}
	res := r.db.Model(&entity.Inbound{}).Where("id = ? AND status = ?", id, from).Updates(cols)
	return res.RowsAffected == 1, res.Error
}

// Delete removes the document and its items when it is still in status.
func (r *InboundRepository) Delete(id uint, status entity.DocumentStatus) (bool, error) {
	res := r.db.Where("id = ? AND status = ?", id, status).Delete(&entity.Inbound{})
	if res.Error != nil || res.RowsAffected == 0 {
		return false, res.Error
	}
	return true, r.db.Where("inbound_id = ?", id).Delete(&entity.InboundItem{}).Error
}

func (r *InboundRepository) CountByStatus(status ...entity.DocumentStatus) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Inbound{}).Where("status IN ?", status).Count(&n).Error
	return n, err
}

func (r *InboundRepository) CountCompletedSince(from time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Inbound{}).
		Where("status = ? AND completed_at >= ?", entity.StatusCompleted, from).
		Count(&n).Error
	return n, err
}
