package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	authRepo "warehouse.GO/model/repository/auth"
)

const blacklistPrefix = "blacklist:"

// Blacklist records revoked token ids in the database and mirrors them to Redis when available.
type Blacklist struct {
	repo   *authRepo.AuthRepository
	redis  redis.Cmdable
	logger *logrus.Logger
}

// NewBlacklist accepts a nil Redis client; lookups then go to the database only.
func NewBlacklist(repo *authRepo.AuthRepository, rdb redis.Cmdable, logger *logrus.Logger) *Blacklist {
	return &Blacklist{repo: repo, redis: rdb, logger: logger}
}

// Revoke blacklists the token described by claims until it expires.
func (b *Blacklist) Revoke(ctx context.Context, claims *Claims, reason string) error {
	exp := claims.ExpiresAtTime()
	if err := b.repo.Blacklist(claims.Id, claims.UserID, reason, exp); err != nil {
		return err
	}
	if b.redis != nil {
		if ttl := time.Until(exp); ttl > 0 {
			if err := b.redis.Set(ctx, blacklistPrefix+claims.Id, reason, ttl).Err(); err != nil {
				b.logger.WithError(err).Warn("blacklist: redis mirror failed")
			}
		}
	}
	return nil
}

// IsRevoked checks Redis first and falls back to the database.
func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b.redis != nil {
		n, err := b.redis.Exists(ctx, blacklistPrefix+jti).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			b.logger.WithError(err).Warn("blacklist: redis lookup failed, using database")
		}
	}
	return b.repo.IsBlacklisted(jti, time.Now())
}

// Purge removes expired entries from the database. Redis keys expire on their own.
func (b *Blacklist) Purge(now time.Time) (int64, error) {
	return b.repo.PurgeExpired(now)
}
