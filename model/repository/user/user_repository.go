package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/repository"
)

// Filter is the list query of /api/users.
type Filter struct {
	query.Page `mapstructure:",squash"`
	Role       string `mapstructure:"role"`
	IsActive   *bool  `mapstructure:"isActive"`
}

var sortColumns = map[string]string{
	"username":  "username",
	"email":     "email",
	"fullName":  "full_name",
	"role":      "role",
	"createdAt": "created_at",
	"lastLogin": "last_login",
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *entity.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) FindByID(id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByLogin looks a user up by username or email.
func (r *UserRepository) FindByLogin(login string) (*entity.User, error) {
	login = strings.TrimSpace(login)
	var u entity.User
	err := r.db.Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Taken reports whether username or email is used by a user other than exceptID.
func (r *UserRepository) Taken(username, email string, exceptID uint) (string, error) {
	var u entity.User
	q := r.db.Where("(username = ? OR email = ?)", username, email)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Select("username", "email").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if username != "" && u.Username == username {
		return "username", nil
	}
	return "email", nil
}

func (r *UserRepository) List(f Filter) ([]entity.User, int64, error) {
	q := r.db.Model(&entity.User{})
	if f.Search != "" {
		like := query.Like(f.Search)
		q = q.Where(query.LikeAny("username", "email", "full_name"), like, like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return repository.FindPage[entity.User](q, f.Page, f.Order(sortColumns, "created_at DESC"))
}

// Save writes every column of u, running the password hook.
func (r *UserRepository) Save(u *entity.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) Delete(id uint) error {
	res := r.db.Delete(&entity.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.User{}).Count(&n).Error
	return n, err
}
