// Package inventory serves /api/inventory: stock rows, adjustments and transfers.
package inventory

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	productRepo "warehouse.GO/model/repository/product"
	"warehouse.GO/service/stock"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

// ProductStock is the stock of one product over all warehouses.
type ProductStock struct {
	Product *entity.Product    `json:"product"`
	Rows    []entity.Inventory `json:"inventory"`
	Totals  Totals             `json:"totals"`
}

type Totals struct {
	Quantity   int64 `json:"quantity"`
	Reserved   int64 `json:"reservedQuantity"`
	Available  int64 `json:"availableQuantity"`
	Warehouses int   `json:"warehouses"`
}

func RegisterInventoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	Routes(apiGroup, db, stock.NewDefaultService(db))
}

func Routes(apiGroup *echo.Group, db *gorm.DB, svc *stock.Service) {
	g := apiGroup.Group("/inventory")
	writers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := inventoryRepo.NewInventoryRepository(db)
	products := productRepo.NewProductRepository(db)

	g.GET("", func(c echo.Context) error {
		var f inventoryRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		items, total, err := repo.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.GET("/product/:productId", func(c echo.Context) error {
		id, err := api.ParamID(c, "productId")
		if err != nil {
			return err
		}
		p, err := products.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		rows, err := repo.ByProduct(id)
		if err != nil {
			return err
		}
		out := ProductStock{Product: p, Rows: rows}
		seen := map[uint]struct{}{}
		for _, r := range rows {
			out.Totals.Quantity += r.Quantity
			out.Totals.Reserved += r.ReservedQuantity
			out.Totals.Available += r.AvailableQuantity
			seen[r.WarehouseID] = struct{}{}
		}
		out.Totals.Warehouses = len(seen)
		return response.OK(c, "", out)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		inv, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Inventory")
		}
		return response.OK(c, "", inv)
	})

	g.POST("/adjust", func(c echo.Context) error {
		var in stock.AdjustInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		m, err := svc.Adjust(c.Request().Context(), auth.CurrentUser(c), in)
		if err != nil {
			return err
		}
		return response.OK(c, "Inventory adjusted", m)
	}, writers)

	g.POST("/transfer", func(c echo.Context) error {
		var in stock.TransferInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		res, err := svc.Transfer(c.Request().Context(), auth.CurrentUser(c), in)
		if err != nil {
			return err
		}
		return response.OK(c, "Stock transferred", res)
	}, writers)
}
