// Package warehouse serves /api/warehouses.
package warehouse

import (
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	userRepo "warehouse.GO/model/repository/user"
	warehouseRepo "warehouse.GO/model/repository/warehouse"
)

func init() {
	api.RegisterModule(RegisterWarehouseRoutes)
}

type location struct {
	Code     string `json:"code" validate:"required,max=50"`
	Name     string `json:"name" validate:"max=100"`
	Capacity int64  `json:"capacity" validate:"gte=0"`
}

type zone struct {
	Code      string     `json:"code" validate:"required,max=50"`
	Name      string     `json:"name" validate:"max=100"`
	Locations []location `json:"locations" validate:"dive"`
}

type createRequest struct {
	Code      string `json:"code" validate:"required,max=50"`
	Name      string `json:"name" validate:"required,max=200"`
	Address   string `json:"address"`
	ManagerID *uint  `json:"managerId"`
	Capacity  int64  `json:"capacity" validate:"gte=0"`
	Zones     []zone `json:"zones" validate:"dive"`
}

type updateRequest struct {
	Code     *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address  *string `json:"address"`
	// 0 clears the manager.
	ManagerID *uint   `json:"managerId"`
	Capacity  *int64  `json:"capacity" validate:"omitempty,gte=0"`
	Zones     *[]zone `json:"zones" validate:"omitempty,dive"`
	IsActive  *bool   `json:"isActive"`
}

// Detail is a warehouse with its stock totals.
type Detail struct {
	*entity.Warehouse
	Stock inventoryRepo.Totals `json:"stock"`
}

// zonesOf upper-cases codes and rejects location codes used twice.
func zonesOf(in []zone) ([]entity.Zone, error) {
	zones := make([]entity.Zone, 0, len(in))
	for _, z := range in {
		ez := entity.Zone{Code: entity.NormalizeCode(z.Code), Name: z.Name, Locations: []entity.Location{}}
		for _, l := range z.Locations {
			ez.Locations = append(ez.Locations, entity.Location{
				Code:     entity.NormalizeCode(l.Code),
				Name:     l.Name,
				Capacity: l.Capacity,
			})
		}
		zones = append(zones, ez)
	}
	if dup := entity.DuplicateLocation(zones); dup != "" {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{
			Field:   "zones",
			Message: "location " + dup + " is used more than once",
		})
	}
	return zones, nil
}

func RegisterWarehouseRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/warehouses")
	writers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := warehouseRepo.NewWarehouseRepository(db)
	stock := inventoryRepo.NewInventoryRepository(db)
	users := userRepo.NewUserRepository(db)

	checkManager := func(id uint) error {
		u, err := users.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Manager")
		}
		if !u.IsActive {
			return apperror.BadRequest("manager is not active")
		}
		return nil
	}

	g.GET("", func(c echo.Context) error {
		var f warehouseRepo.Filter
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
		w, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Warehouse")
		}
		totals, err := stock.Totals(id)
		if err != nil {
			return err
		}
		return response.OK(c, "", Detail{Warehouse: w, Stock: totals})
	})

	g.GET("/:id/inventory", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		if _, err := repo.FindByID(id); err != nil {
			return apperror.FromDB(err, "Warehouse")
		}
		var f inventoryRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		f.WarehouseID = &id
		items, total, err := stock.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.POST("", func(c echo.Context) error {
		var in createRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		zones, err := zonesOf(in.Zones)
		if err != nil {
			return err
		}
		w := &entity.Warehouse{
			Code:     strings.ToUpper(strings.TrimSpace(in.Code)),
			Name:     strings.TrimSpace(in.Name),
			Address:  in.Address,
			Capacity: in.Capacity,
			Zones:    datatypes.NewJSONType(zones),
			IsActive: true,
		}
		if in.ManagerID != nil && *in.ManagerID > 0 {
			if err := checkManager(*in.ManagerID); err != nil {
				return err
			}
			w.ManagerID = in.ManagerID
		}
		if err := repo.Create(w); err != nil {
			return apperror.FromDB(err, "Warehouse")
		}
		return response.Created(c, "Warehouse created", w)
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
		fields := map[string]interface{}{}
		if in.Code != nil {
			fields["code"] = strings.ToUpper(strings.TrimSpace(*in.Code))
		}
		if in.Name != nil {
			fields["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Address != nil {
			fields["address"] = *in.Address
		}
		if in.Capacity != nil {
			fields["capacity"] = *in.Capacity
		}
		if in.IsActive != nil {
			fields["is_active"] = *in.IsActive
		}
		if in.Zones != nil {
			zones, err := zonesOf(*in.Zones)
			if err != nil {
				return err
			}
			fields["zones"] = datatypes.NewJSONType(zones)
		}
		if in.ManagerID != nil {
			if *in.ManagerID == 0 {
				fields["manager_id"] = nil
			} else {
				if err := checkManager(*in.ManagerID); err != nil {
					return err
				}
				fields["manager_id"] = *in.ManagerID
			}
		}
		if err := repo.Update(id, fields); err != nil {
			return apperror.FromDB(err, "Warehouse")
		}
		w, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Warehouse")
		}
		return response.OK(c, "Warehouse updated", w)
	}, writers)

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		if err := repo.Delete(id); err != nil {
			return apperror.FromDB(err, "Warehouse")
		}
		return response.OK(c, "Warehouse deleted", nil)
	}, auth.RequireRoles(entity.RoleAdmin))
}
