package entity

import "time"

// TokenBlacklist holds revoked access tokens until they expire.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI       string    `gorm:"column:jti;type:varchar(64);not null;uniqueIndex" json:"jti"`
	UserID    uint      `gorm:"index" json:"userId"`
	Reason    string    `gorm:"type:varchar(32)" json:"reason"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
