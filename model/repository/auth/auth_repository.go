package auth

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warehouse.GO/model/entity"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// Blacklist stores a revoked token id. Revoking the same jti twice is a no-op.
func (r *AuthRepository) Blacklist(jti string, userID uint, reason string, expiresAt time.Time) error {
	row := entity.TokenBlacklist{JTI: jti, UserID: userID, Reason: reason, ExpiresAt: expiresAt}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// IsBlacklisted reports whether jti was revoked and the entry has not expired yet.
func (r *AuthRepository) IsBlacklisted(jti string, now time.Time) (bool, error) {
	var n int64
	err := r.db.Model(&entity.TokenBlacklist{}).
		Where("jti = ? AND expires_at > ?", jti, now).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired deletes entries whose token expired before now.
func (r *AuthRepository) PurgeExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&entity.TokenBlacklist{})
	return res.RowsAffected, res.Error
}

// SetRefreshToken stores (or clears, with "") the user's current refresh token.
func (r *AuthRepository) SetRefreshToken(userID uint, token string) error {
	return r.db.Model(&entity.User{}).Where("id = ?", userID).Update("refresh_token", token).Error
}

// RotateRefreshToken replaces oldToken with newToken only if oldToken is still current.
func (r *AuthRepository) RotateRefreshToken(userID uint, oldToken, newToken string) (bool, error) {
	res := r.db.Model(&entity.User{}).
		Where("id = ? AND refresh_token = ?", userID, oldToken).
		Update("refresh_token", newToken)
	return res.RowsAffected == 1, res.Error
}

func (r *AuthRepository) TouchLastLogin(userID uint, at time.Time) error {
	return r.db.Model(&entity.User{}).Where("id = ?", userID).Update("last_login", at).Error
}
