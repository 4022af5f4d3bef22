package graphql

import (
	"context"

	"gorm.io/gorm"

	"warehouse.GO/model/entity"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const (
	CtxKeyUser contextKey = "user"
	CtxKeyDB   contextKey = "db"
)

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, CtxKeyUser, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *entity.User {
	u, _ := ctx.Value(CtxKeyUser).(*entity.User)
	return u
}

// WithDB attaches the database handle used by extension resolvers.
func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, CtxKeyDB, db)
}

// DBFromContext returns the handle set by WithDB, or nil.
func DBFromContext(ctx context.Context) *gorm.DB {
	db, _ := ctx.Value(CtxKeyDB).(*gorm.DB)
	return db
}
