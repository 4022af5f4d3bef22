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
	customerRepo "warehouse.GO/model/repository/customer"
)

func init() {
	api.RegisterModule(RegisterCustomerRoutes)
}

type customerCreate struct {
	contactCreate
	Type string `json:"type" validate:"omitempty,oneof=individual company"`
}

type customerUpdate struct {
	contactUpdate
	Type *string `json:"type" validate:"omitempty,oneof=individual company"`
}

func RegisterCustomerRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/customers")
	writers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := customerRepo.NewCustomerRepository(db)

	g.GET("", func(c echo.Context) error {
		var f customerRepo.Filter
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
		cust, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Customer")
		}
		return response.OK(c, "", cust)
	})

	g.POST("", func(c echo.Context) error {
		var in customerCreate
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		cust := &entity.Customer{Contact: in.contact(), Type: entity.CustomerType(in.Type)}
		if cust.Type == "" {
			cust.Type = entity.CustomerIndividual
		}
		if err := repo.Create(cust); err != nil {
			return apperror.FromDB(err, "Customer")
		}
		return response.Created(c, "Customer created", cust)
	}, writers)

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		var in customerUpdate
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		fields := in.fields()
		if in.Type != nil {
			fields["type"] = *in.Type
		}
		if err := repo.Update(id, fields); err != nil {
			return apperror.FromDB(err, "Customer")
		}
		cust, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Customer")
		}
		return response.OK(c, "Customer updated", cust)
	}, writers)

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		if err := repo.Delete(id); err != nil {
			return apperror.FromDB(err, "Customer")
		}
		return response.OK(c, "Customer deleted", nil)
	}, writers)
}
