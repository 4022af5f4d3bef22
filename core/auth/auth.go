package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/core/apperror"
	"warehouse.GO/model/entity"
	authRepo "warehouse.GO/model/repository/auth"
	userRepo "warehouse.GO/model/repository/user"
)

const (
	ctxUser   = "auth_user"
	ctxClaims = "auth_claims"
)

// Tokens builds the token manager from the application config.
func Tokens() *TokenManager {
	cfg := config.GetConfig()
	return NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

// NewDefaultBlacklist wires the blacklist to db and the global Redis client.
func NewDefaultBlacklist(db *gorm.DB) *Blacklist {
	var rdb redis.Cmdable
	if config.RedisClient != nil {
		rdb = config.RedisClient
	}
	return NewBlacklist(authRepo.NewAuthRepository(db), rdb, config.GetLogger())
}

// Middleware returns the bearer-token middleware for the /api group.
func Middleware(db *gorm.DB) echo.MiddlewareFunc {
	return NewMiddleware(Tokens(), NewDefaultBlacklist(db), userRepo.NewUserRepository(db), buildSkipper())
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

// NewMiddleware verifies the access token, rejects revoked tokens and inactive users, and stores
// the user and claims on the context.
func NewMiddleware(tm *TokenManager, bl *Blacklist, users *userRepo.UserRepository, skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return apperror.Unauthorized("Access token is required")
			}
			claims, err := tm.Parse(token, TypeAccess)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					return apperror.Unauthorized("Access token expired")
				}
				return apperror.Unauthorized("Invalid access token")
			}
			revoked, err := bl.IsRevoked(c.Request().Context(), claims.Id)
			if err != nil {
				return apperror.Internal(err)
			}
			if revoked {
				return apperror.TokenRevoked()
			}
			u, err := users.FindByID(claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.Unauthorized("User no longer exists")
				}
				return apperror.Internal(err)
			}
			if !u.IsActive {
				return apperror.Unauthorized("User is inactive")
			}
			c.Set(ctxUser, u)
			c.Set(ctxClaims, claims)
			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// RequireRoles allows the request only when the authenticated user has one of roles.
func RequireRoles(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return apperror.Unauthorized("Authentication required")
			}
			if !u.HasRole(roles...) {
				return apperror.Forbidden("You do not have permission to perform this action")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c echo.Context) *entity.User {
	u, _ := c.Get(ctxUser).(*entity.User)
	return u
}

// CurrentClaims returns the verified access-token claims or nil.
func CurrentClaims(c echo.Context) *Claims {
	cl, _ := c.Get(ctxClaims).(*Claims)
	return cl
}

// SetCurrent stores u and claims on c. Used by the GraphQL handler and tests.
func SetCurrent(c echo.Context, u *entity.User, claims *Claims) {
	c.Set(ctxUser, u)
	c.Set(ctxClaims, claims)
}
