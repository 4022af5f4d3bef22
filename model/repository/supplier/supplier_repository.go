package supplier

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
}

var sortColumns = map[string]string{
	"code":      "code",
	"name":      "name",
	"createdAt": "created_at",
}

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(s *entity.Supplier) error {
	return r.db.Create(s).Error
}

func (r *SupplierRepository) FindByID(id uint) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) List(f Filter) ([]entity.Supplier, int64, error) {
	q := r.db.Model(&entity.Supplier{})
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("code", "name", "contact_person", "email"), like, like, like, like)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return repository.FindPage[entity.Supplier](q, f.Page, f.Order(sortColumns, "name ASC"))
}

func (r *SupplierRepository) Update(id uint, fields map[string]interface{}) error {
	return repository.UpdateFields(r.db, &entity.Supplier{}, id, fields)
}

// Delete removes a supplier no inbound refers to.
func (r *SupplierRepository) Delete(id uint) error {
	if _, err := r.FindByID(id); err != nil {
		return err
	}
	var n int64
	if err := r.db.Model(&entity.Inbound{}).Where("supplier_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperror.BadRequest("supplier is used by inbounds, deactivate it instead")
	}
	return r.db.Delete(&entity.Supplier{}, id).Error
}

func (r *SupplierRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Supplier{}).Count(&n).Error
	return n, err
}
