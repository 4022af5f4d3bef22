package product

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/config"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/query"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	categoryRepo "warehouse.GO/model/repository/category"
	productRepo "warehouse.GO/model/repository/product"
	"warehouse.GO/service/media"
	"warehouse.GO/service/search"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

type createRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description"`
	CategoryID   *uint           `json:"categoryId"`
	Unit         string          `json:"unit" validate:"max=20"`
	Barcode      string          `json:"barcode" validate:"max=64"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	MinStock     int64           `json:"minStock" validate:"gte=0"`
	MaxStock     int64           `json:"maxStock" validate:"gte=0"`
	ReorderPoint int64           `json:"reorderPoint" validate:"gte=0"`
	ImageURL     string          `json:"imageUrl" validate:"max=255"`
	Status       string          `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

type updateRequest struct {
	SKU          *string          `json:"sku" validate:"omitempty,min=1,max=64"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	CategoryID   *uint            `json:"categoryId"`
	Unit         *string          `json:"unit" validate:"omitempty,max=20"`
	Barcode      *string          `json:"barcode" validate:"omitempty,max=64"`
	CostPrice    *decimal.Decimal `json:"costPrice"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	MinStock     *int64           `json:"minStock" validate:"omitempty,gte=0"`
	MaxStock     *int64           `json:"maxStock" validate:"omitempty,gte=0"`
	ReorderPoint *int64           `json:"reorderPoint" validate:"omitempty,gte=0"`
	ImageURL     *string          `json:"imageUrl" validate:"omitempty,max=255"`
	Status       *string          `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

// Detail is a product with its stock totals.
type Detail struct {
	*entity.Product
	Stock productRepo.StockSummary `json:"stock"`
}

func checkPrices(prices map[string]*decimal.Decimal) error {
	var fields []apperror.FieldError
	for _, name := range []string{"costPrice", "sellingPrice"} {
		if p := prices[name]; p != nil && p.IsNegative() {
			fields = append(fields, apperror.FieldError{Field: name, Message: name + " must be greater than or equal to 0"})
		}
	}
	if len(fields) > 0 {
		return apperror.Validation("Validation failed", fields...)
	}
	return nil
}

func checkStockLevels(minStock, maxStock int64) error {
	if maxStock > 0 && maxStock < minStock {
		return apperror.Validation("Validation failed", apperror.FieldError{
			Field: "maxStock", Message: "maxStock must be greater than or equal to minStock",
		})
	}
	return nil
}

func checkCategory(db *gorm.DB, id *uint) error {
	if id == nil || *id == 0 {
		return nil
	}
	ok, err := categoryRepo.NewCategoryRepository(db).Exists(*id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Validation("Validation failed", apperror.FieldError{Field: "categoryId", Message: "category does not exist"})
	}
	return nil
}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	cfg := config.GetConfig()
	Routes(apiGroup, db, search.GetService(db), media.NewService(cfg.MediaDir, cfg.MediaURL))
}

func Routes(apiGroup *echo.Group, db *gorm.DB, finder *search.Service, images *media.Service) {
	g := apiGroup.Group("/products")
	writers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := productRepo.NewProductRepository(db)

	g.GET("", func(c echo.Context) error {
		var f productRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		items, total, err := repo.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.GET("/search", func(c echo.Context) error {
		var p query.Page
		if err := api.Query(c, &p); err != nil {
			return err
		}
		term := strings.TrimSpace(c.QueryParam("q"))
		if term == "" {
			term = p.Search
		}
		if term == "" {
			return apperror.Validation("Validation failed", apperror.FieldError{Field: "q", Message: "q is required"})
		}
		items, total, err := finder.Search(c.Request().Context(), term, p)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(p.Page, p.Limit, total))
	})

	g.GET("/low-stock", func(c echo.Context) error {
		rows, err := repo.LowStock(api.IntQuery(c, "limit"))
		if err != nil {
			return err
		}
		return response.OK(c, "", rows)
	})

	g.GET("/sku/:sku", func(c echo.Context) error {
		p, err := repo.FindBySKU(c.Param("sku"))
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		return response.OK(c, "", p)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		p, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		stock, err := repo.StockSummary(id)
		if err != nil {
			return err
		}
		return response.OK(c, "", Detail{Product: p, Stock: stock})
	})

	g.POST("", func(c echo.Context) error {
		var in createRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		if err := checkPrices(map[string]*decimal.Decimal{"costPrice": &in.CostPrice, "sellingPrice": &in.SellingPrice}); err != nil {
			return err
		}
		if err := checkStockLevels(in.MinStock, in.MaxStock); err != nil {
			return err
		}
		if err := checkCategory(db, in.CategoryID); err != nil {
			return err
		}
		p := &entity.Product{
			SKU:          in.SKU,
			Name:         strings.TrimSpace(in.Name),
			Description:  in.Description,
			Unit:         in.Unit,
			Barcode:      in.Barcode,
			CostPrice:    in.CostPrice,
			SellingPrice: in.SellingPrice,
			MinStock:     in.MinStock,
			MaxStock:     in.MaxStock,
			ReorderPoint: in.ReorderPoint,
			ImageURL:     in.ImageURL,
			Status:       entity.ProductStatus(in.Status),
		}
		if in.CategoryID != nil && *in.CategoryID > 0 {
			p.CategoryID = in.CategoryID
		}
		if err := repo.Create(p); err != nil {
			return apperror.FromDB(err, "Product")
		}
		finder.Sync(c.Request().Context(), p)
		return response.Created(c, "Product created", p)
	}, writers)

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		var in updateRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		cur, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		if err := checkPrices(map[string]*decimal.Decimal{"costPrice": in.CostPrice, "sellingPrice": in.SellingPrice}); err != nil {
			return err
		}
		minStock, maxStock := cur.MinStock, cur.MaxStock
		if in.MinStock != nil {
			minStock = *in.MinStock
		}
		if in.MaxStock != nil {
			maxStock = *in.MaxStock
		}
		if err := checkStockLevels(minStock, maxStock); err != nil {
			return err
		}
		if err := checkCategory(db, in.CategoryID); err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if in.SKU != nil {
			fields["sku"] = entity.NormalizeSKU(*in.SKU)
		}
		if in.Name != nil {
			fields["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if in.CategoryID != nil {
			if *in.CategoryID == 0 {
				fields["category_id"] = nil
			} else {
				fields["category_id"] = *in.CategoryID
			}
		}
		if in.Unit != nil && *in.Unit != "" {
			fields["unit"] = *in.Unit
		}
		if in.Barcode != nil {
			fields["barcode"] = *in.Barcode
		}
		if in.CostPrice != nil {
			fields["cost_price"] = *in.CostPrice
		}
		if in.SellingPrice != nil {
			fields["selling_price"] = *in.SellingPrice
		}
		if in.MinStock != nil {
			fields["min_stock"] = *in.MinStock
		}
		if in.MaxStock != nil {
			fields["max_stock"] = *in.MaxStock
		}
		if in.ReorderPoint != nil {
			fields["reorder_point"] = *in.ReorderPoint
		}
		if in.ImageURL != nil {
			fields["image_url"] = *in.ImageURL
		}
		if in.Status != nil {
			fields["status"] = *in.Status
		}
		if err := repo.Update(id, fields); err != nil {
			return apperror.FromDB(err, "Product")
		}
		p, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		finder.Sync(c.Request().Context(), p)
		return response.OK(c, "Product updated", p)
	}, writers)

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		p, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		if err := repo.Delete(id); err != nil {
			return apperror.FromDB(err, "Product")
		}
		finder.Forget(c.Request().Context(), id)
		images.Remove(p.ImageURL)
		return response.OK(c, "Product deleted", nil)
	}, writers)

	g.POST("/:id/image", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		p, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Product")
		}
		fh, err := c.FormFile("image")
		if err != nil {
			return apperror.Validation("Validation failed", apperror.FieldError{Field: "image", Message: "image file is required"})
		}
		if fh.Size > media.MaxUploadBytes {
			return apperror.BadRequest("image must be at most 5 MB")
		}
		src, err := fh.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		img, err := images.SaveProductImage(id, src)
		if err != nil {
			return err
		}
		if err := repo.Update(id, map[string]interface{}{"image_url": img.URL}); err != nil {
			images.Remove(img.URL)
			return apperror.FromDB(err, "Product")
		}
		images.Remove(p.ImageURL)
		return response.OK(c, "Image uploaded", img)
	}, writers)
}
