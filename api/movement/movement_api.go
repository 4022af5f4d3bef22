// Package movement serves the read-only stock ledger at /api/stock-movements.
package movement

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/response"
	movementRepo "warehouse.GO/model/repository/movement"
	productRepo "warehouse.GO/model/repository/product"
)

func init() {
	api.RegisterModule(RegisterMovementRoutes)
}

func RegisterMovementRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stock-movements")
	repo := movementRepo.NewMovementRepository(db)
	products := productRepo.NewProductRepository(db)

	list := func(c echo.Context, f movementRepo.Filter) error {
		items, total, err := repo.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	}

	g.GET("", func(c echo.Context) error {
		var f movementRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		return list(c, f)
	})

	g.GET("/product/:productId", func(c echo.Context) error {
		id, err := api.ParamID(c, "productId")
		if err != nil {
			return err
		}
		if _, err := products.FindByID(id); err != nil {
			return apperror.FromDB(err, "Product")
		}
		var f movementRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		f.ProductID = &id
		return list(c, f)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		m, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Stock movement")
		}
		return response.OK(c, "", m)
	})
}
