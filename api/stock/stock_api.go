// Package stock serves bulk imports: opening stock as JSON and catalog CSV files.
package stock

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/config"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	productService "warehouse.GO/service/product"
	"warehouse.GO/service/search"
	stockService "warehouse.GO/service/stock"
)

// maxCSVBytes bounds an uploaded catalog file.
const maxCSVBytes = 20 << 20

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

type importRequest struct {
	Items []productService.StockItemInput `json:"items" validate:"required,min=1,max=1000,dive"`
}

func RegisterStockRoutes(apiGroup *echo.Group, db *gorm.DB) {
	Routes(apiGroup, db, stockService.NewDefaultService(db), search.GetService(db))
}

func Routes(apiGroup *echo.Group, db *gorm.DB, svc *stockService.Service, finder *search.Service) {
	g := apiGroup.Group("/stock", auth.RequireRoles(entity.RoleAdmin, entity.RoleManager))

	// POST /api/stock/import – set on-hand quantities by SKU and warehouse code
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()
		var in importRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		res, err := productService.ImportStock(c.Request().Context(), db, svc, auth.CurrentUser(c), in.Items)
		if err != nil {
			return err
		}
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		return response.OK(c, "Stock imported", res)
	})

	// POST /api/stock/import/products – multipart "file" with a catalog CSV
	g.POST("/import/products", func(c echo.Context) error {
		start := time.Now()
		fh, err := c.FormFile("file")
		if err != nil {
			return apperror.Validation("Validation failed", apperror.FieldError{Field: "file", Message: "CSV file is required"})
		}
		if fh.Size > maxCSVBytes {
			return apperror.BadRequest("CSV file must be at most 20 MB")
		}
		src, err := fh.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		res, err := productService.ImportProducts(c.Request().Context(), db, svc, src, productService.ImportOptions{Actor: auth.CurrentUser(c)})
		if err != nil {
			return apperror.BadRequest(err.Error())
		}
		if finder != nil && finder.Enabled() && res.Created+res.Updated > 0 {
			go func() {
				if _, err := finder.Reindex(context.Background()); err != nil {
					config.GetLogger().WithError(err).Warn("search: reindex after import failed")
				}
			}()
		}
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		return response.OK(c, "Products imported", res)
	})
}
