package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// PasswordCost is the bcrypt cost used by the BeforeSave hook.
var PasswordCost = bcrypt.DefaultCost

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"type:varchar(128);not null;uniqueIndex" json:"email"`
	Password     string     `gorm:"type:varchar(100);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(100)" json:"fullName"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`
	Role         Role       `gorm:"type:varchar(16);not null;default:staff" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	RefreshToken string     `gorm:"type:varchar(512)" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave hashes Password unless it already holds a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(u.Password)); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares plain against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}
