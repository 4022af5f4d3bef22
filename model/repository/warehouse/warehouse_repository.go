package warehouse

import (
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

type Filter struct {
	query.Page `mapstructure:",squash"`
	IsActive   *bool `mapstructure:"isActive"`
	ManagerID  *uint `mapstructure:"managerId"`
}

var sortColumns = map[string]string{
	"code":      "code",
	"name":      "name",
	"capacity":  "capacity",
	"createdAt": "created_at",
}

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) Create(w *entity.Warehouse) error {
	return r.db.Create(w).Error
}

func (r *WarehouseRepository) FindByID(id uint) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := r.db.Preload("Manager").First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// All returns every warehouse ordered by code.
func (r *WarehouseRepository) All() ([]entity.Warehouse, error) {
	var items []entity.Warehouse
	err := r.db.Order("code ASC").Find(&items).Error
	return items, err
}

func (r *WarehouseRepository) List(f Filter) ([]entity.Warehouse, int64, error) {
	q := r.db.Model(&entity.Warehouse{})
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("code", "name", "address"), like, like, like)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.ManagerID != nil {
		q = q.Where("manager_id = ?", *f.ManagerID)
	}
	return repository.FindPage[entity.Warehouse](q, f.Page, f.Order(sortColumns, "code ASC"), "Manager")
}

func (r *WarehouseRepository) Update(id uint, fields map[string]interface{}) error {
	return repository.UpdateFields(r.db, &entity.Warehouse{}, id, fields)
}

// Delete removes a warehouse that holds no stock and no documents.
func (r *WarehouseRepository) Delete(id uint) error {
	if _, err := r.FindByID(id); err != nil {
		return err
	}
	var qty int64
	err := r.db.Model(&entity.Inventory{}).Select("COALESCE(SUM(quantity),0)").
		Where("warehouse_id = ?", id).Scan(&qty).Error
	if err != nil {
		return err
	}
	if qty > 0 {
		return apperror.BadRequest("warehouse still holds stock")
	}
	var n int64
	for _, model := range []interface{}{&entity.Inbound{}, &entity.Outbound{}} {
		if err := r.db.Model(model).Where("warehouse_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperror.BadRequest("warehouse is used by inbounds or outbounds, deactivate it instead")
		}
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("warehouse_id = ?", id).Delete(&entity.Inventory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Warehouse{}, id).Error
	})
}

func (r *WarehouseRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Warehouse{}).Count(&n).Error
	return n, err
}
