package category

import (
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	categoryRepo "warehouse.GO/model/repository/category"
)

func init() {
	api.RegisterModule(RegisterCategoryRoutes)
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parentId"`
}

type updateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code        *string `json:"code" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
	// 0 moves the category to the root.
	ParentID *uint `json:"parentId"`
	IsActive *bool `json:"isActive"`
}

func RegisterCategoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/categories")
	writers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := categoryRepo.NewCategoryRepository(db)

	g.GET("", func(c echo.Context) error {
		var f categoryRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		items, total, err := categoryRepo.NewCategoryRepository(db.WithContext(c.Request().Context())).List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.GET("/tree", func(c echo.Context) error {
		tree, err := repo.Tree()
		if err != nil {
			return err
		}
		return response.OK(c, "", tree)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		cat, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Category")
		}
		return response.OK(c, "", cat)
	})

	g.POST("", func(c echo.Context) error {
		var in createRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		cat := &entity.Category{
			Name:        strings.TrimSpace(in.Name),
			Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
			Description: in.Description,
			IsActive:    true,
		}
		if in.ParentID != nil && *in.ParentID > 0 {
			if err := repo.CheckParent(0, *in.ParentID); err != nil {
				return err
			}
			cat.ParentID = in.ParentID
		}
		if err := repo.Create(cat); err != nil {
			return apperror.FromDB(err, "Category")
		}
		return response.Created(c, "Category created", cat)
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
		if in.Name != nil {
			fields["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Code != nil {
			fields["code"] = strings.ToUpper(strings.TrimSpace(*in.Code))
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if in.IsActive != nil {
			fields["is_active"] = *in.IsActive
		}
		if in.ParentID != nil {
			if *in.ParentID == 0 {
				fields["parent_id"] = nil
			} else {
				if err := repo.CheckParent(id, *in.ParentID); err != nil {
					return err
				}
				fields["parent_id"] = *in.ParentID
			}
		}
		if err := repo.Update(id, fields); err != nil {
			return apperror.FromDB(err, "Category")
		}
		cat, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "Category")
		}
		return response.OK(c, "Category updated", cat)
	}, writers)

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		if err := repo.Delete(id); err != nil {
			return apperror.FromDB(err, "Category")
		}
		return response.OK(c, "Category deleted", nil)
	}, writers)
}
