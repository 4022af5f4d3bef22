// Package dashboard serves /api/dashboard.
package dashboard

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/config"
	"warehouse.GO/core/cache"
	"warehouse.GO/core/response"
	dashboardService "warehouse.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterDashboardRoutes)
}

func RegisterDashboardRoutes(apiGroup *echo.Group, db *gorm.DB) {
	Routes(apiGroup, dashboardService.NewService(db, cache.GetInstance(), config.GetConfig().DashboardCacheTTL))
}

func Routes(apiGroup *echo.Group, svc *dashboardService.Service) {
	g := apiGroup.Group("/dashboard")

	g.GET("/stats", func(c echo.Context) error {
		st, err := svc.Stats(c.Request().Context())
		if err != nil {
			return err
		}
		return response.OK(c, "", st)
	})

	g.GET("/recent-activities", func(c echo.Context) error {
		items, err := svc.RecentActivities(c.Request().Context(), api.IntQuery(c, "limit"))
		if err != nil {
			return err
		}
		return response.OK(c, "", items)
	})

	g.GET("/stock-trend", func(c echo.Context) error {
		items, err := svc.StockTrend(c.Request().Context(), api.IntQuery(c, "days"))
		if err != nil {
			return err
		}
		return response.OK(c, "", items)
	})

	g.GET("/low-stock", func(c echo.Context) error {
		items, err := svc.LowStock(c.Request().Context(), api.IntQuery(c, "limit"))
		if err != nil {
			return err
		}
		return response.OK(c, "", items)
	})

	g.GET("/top-products", func(c echo.Context) error {
		items, err := svc.TopProducts(c.Request().Context(), api.IntQuery(c, "days"), api.IntQuery(c, "limit"))
		if err != nil {
			return err
		}
		return response.OK(c, "", items)
	})
}
