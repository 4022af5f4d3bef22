// Package health serves GET /health.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/config"
)

func init() {
	api.RegisterRoute(func(e *echo.Echo, db *gorm.DB) {
		var rdb redis.Cmdable
		if config.RedisClient != nil {
			rdb = config.RedisClient
		}
		e.GET("/health", Handler(db, rdb))
	})
}

// Status is the /health body. Redis is "disabled" when no client is configured.
type Status struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Redis    string    `json:"redis"`
	Time     time.Time `json:"timestamp"`
}

// Handler reports "ok" when the database answers. A failing Redis only degrades the status.
func Handler(db *gorm.DB, rdb redis.Cmdable) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		st := Status{Status: "ok", Database: "up", Redis: "disabled", Time: time.Now()}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			st.Status, st.Database = "down", "down"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				st.Redis = "down"
				if st.Status == "ok" {
					st.Status = "degraded"
				}
			} else {
				st.Redis = "up"
			}
		}
		return c.JSON(code, st)
	}
}
