package category

import (
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

type Filter struct {
	query.Page `mapstructure:",squash"`
	ParentID   *uint `mapstructure:"parentId"`
	IsActive   *bool `mapstructure:"isActive"`
}

var sortColumns = map[string]string{
	"name":      "name",
	"code":      "code",
	"createdAt": "created_at",
}

// Node is a category with its nested children.
type Node struct {
	entity.Category
	Children []*Node `json:"children"`
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(c *entity.Category) error {
	return r.db.Create(c).Error
}

func (r *CategoryRepository) FindByID(id uint) (*entity.Category, error) {
	var c entity.Category
	if err := r.db.Preload("Parent").Preload("Children").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Exists(id uint) (bool, error) {
	var n int64
	err := r.db.Model(&entity.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *CategoryRepository) List(f Filter) ([]entity.Category, int64, error) {
	q := r.db.Model(&entity.Category{})
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("name", "code"), like, like)
	}
	if f.ParentID != nil {
		if *f.ParentID == 0 {
			q = q.Where("parent_id IS NULL")
		} else {
			q = q.Where("parent_id = ?", *f.ParentID)
		}
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return repository.FindPage[entity.Category](q, f.Page, f.Order(sortColumns, "name ASC"), "Parent")
}

// Tree returns all categories nested under their parents, roots first.
func (r *CategoryRepository) Tree() ([]*Node, error) {
	var all []entity.Category
	if err := r.db.Order("name ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	nodes := make(map[uint]*Node, len(all))
	for _, c := range all {
		nodes[c.ID] = &Node{Category: c, Children: []*Node{}}
	}
	roots := make([]*Node, 0)
	for _, c := range all {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots, nil
}

// CheckParent rejects a parent that does not exist or that would make id its own ancestor.
func (r *CategoryRepository) CheckParent(id, parentID uint) error {
	if id != 0 && id == parentID {
		return apperror.BadRequest("category cannot be its own parent")
	}
	current := parentID
	for depth := 0; current != 0; depth++ {
		if depth > 64 {
			return apperror.BadRequest("category tree is too deep")
		}
		var c entity.Category
		if err := r.db.Select("id", "parent_id").First(&c, current).Error; err != nil {
			if current == parentID {
				return apperror.FromDB(err, "Parent category")
			}
			return err
		}
		if id != 0 && c.ParentID != nil && *c.ParentID == id {
			return apperror.BadRequest("category cannot be moved under its own descendant")
		}
		if c.ParentID == nil {
			break
		}
		current = *c.ParentID
	}
	return nil
}

func (r *CategoryRepository) Update(id uint, fields map[string]interface{}) error {
	return repository.UpdateFields(r.db, &entity.Category{}, id, fields)
}

// Delete removes a category that has neither children nor products.
func (r *CategoryRepository) Delete(id uint) error {
	if ok, err := r.Exists(id); err != nil {
		return err
	} else if !ok {
		return gorm.ErrRecordNotFound
	}
	var n int64
	if err := r.db.Model(&entity.Category{}).Where("parent_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperror.BadRequest("category has child categories")
	}
	if err := r.db.Model(&entity.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperror.BadRequest("category still has products")
	}
	return r.db.Delete(&entity.Category{}, id).Error
}

func (r *CategoryRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Category{}).Count(&n).Error
	return n, err
}
