package partner

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	supplierRepo "warehouse.GO/model/repository/supplier"
)

func init() {
	api.RegisterModule(RegisterSupplierRoutes)
}

type supplierCreate struct {
	contactCreate
	PaymentTerms string `json:"paymentTerms" validate:"max=100"`
}

type supplierUpdate struct {
	contactUpdate
	PaymentTerms *string `json:"paymentTerms" validate:"omitempty,max=100"`
}

func RegisterSupplierRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/suppliers")
	writers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := supplierRepo.NewSupplierRepository(db)

	g.GET("", func(c echo.Context) error {
		var f supplierRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		items, total, err := repo.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		sup, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Supplier")
		}
		return response.OK(c, "", sup)
	})

	g.POST("", func(c echo.Context) error {
		var in supplierCreate
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		sup := &entity.Supplier{Contact: in.contact(), PaymentTerms: in.PaymentTerms}
		if err := repo.Create(sup); err != nil {
			return apperror.FromDB(err, "Supplier")
		}
		return response.Created(c, "Supplier created", sup)
	}, writers)

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		var in supplierUpdate
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		fields := in.fields()
		if in.PaymentTerms != nil {
			fields["payment_terms"] = *in.PaymentTerms
		}
		if err := repo.Update(id, fields); err != nil {
			return apperror.FromDB(err, "Supplier")
		}
		sup, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Supplier")
		}
		return response.OK(c, "Supplier updated", sup)
	}, writers)

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		if err := repo.Delete(id); err != nil {
			return apperror.FromDB(err, "Supplier")
		}
		return response.OK(c, "Supplier deleted", nil)
	}, writers)
}
