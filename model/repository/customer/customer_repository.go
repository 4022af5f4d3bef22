package customer

import (
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

type Filter struct {
	query.Page `mapstructure:",squash"`
	Type       string `mapstructure:"type"`
	IsActive   *bool  `mapstructure:"isActive"`
}

var sortColumns = map[string]string{
	"code":      "code",
	"name":      "name",
	"createdAt": "created_at",
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(c *entity.Customer) error {
	return r.db.Create(c).Error
}

func (r *CustomerRepository) FindByID(id uint) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) List(f Filter) ([]entity.Customer, int64, error) {
	q := r.db.Model(&entity.Customer{})
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("code", "name", "email", "phone"), like, like, like, like)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return repository.FindPage[entity.Customer](q, f.Page, f.Order(sortColumns, "name ASC"))
}

func (r *CustomerRepository) Update(id uint, fields map[string]interface{}) error {
	return repository.UpdateFields(r.db, &entity.Customer{}, id, fields)
}

// Delete removes a customer no outbound refers to.
func (r *CustomerRepository) Delete(id uint) error {
	if _, err := r.FindByID(id); err != nil {
		return err
	}
	var n int64
	if err := r.db.Model(&entity.Outbound{}).Where("customer_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperror.BadRequest("customer is used by outbounds, deactivate it instead")
	}
	return r.db.Delete(&entity.Customer{}, id).Error
}

func (r *CustomerRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Customer{}).Count(&n).Error
	return n, err
}
