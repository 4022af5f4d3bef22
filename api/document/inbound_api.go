package document

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	inboundRepo "warehouse.GO/model/repository/inbound"
	"warehouse.GO/service/stock"
)

func init() {
	api.RegisterModule(RegisterInboundRoutes)
}

func RegisterInboundRoutes(apiGroup *echo.Group, db *gorm.DB) {
	InboundRoutes(apiGroup, db, stock.NewDefaultService(db))
}

func InboundRoutes(apiGroup *echo.Group, db *gorm.DB, svc *stock.Service) {
	g := apiGroup.Group("/inbounds")
	approvers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := inboundRepo.NewInboundRepository(db)

	g.GET("", func(c echo.Context) error {
		var f inboundRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		items, total, err := repo.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.GET("/:id", action("", func(c echo.Context, id uint) (interface{}, error) {
		return svc.Inbound(c.Request().Context(), id)
	}))

	g.POST("", func(c echo.Context) error {
		var in stock.InboundInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		doc, err := svc.CreateInbound(c.Request().Context(), auth.CurrentUser(c), in)
		if err != nil {
			return err
		}
		return response.Created(c, "Inbound created", doc)
	})

	g.PUT("/:id", action("Inbound updated", func(c echo.Context, id uint) (interface{}, error) {
		var in stock.InboundInput
		if err := validate.Bind(c, &in); err != nil {
			return nil, err
		}
		return svc.UpdateInbound(c.Request().Context(), id, in)
	}))

	g.DELETE("/:id", action("Inbound deleted", func(c echo.Context, id uint) (interface{}, error) {
		return nil, svc.DeleteInbound(c.Request().Context(), id)
	}))

	g.POST("/:id/submit", action("Inbound submitted", func(c echo.Context, id uint) (interface{}, error) {
		return svc.SubmitInbound(c.Request().Context(), id)
	}))

	g.POST("/:id/approve", action("Inbound approved", func(c echo.Context, id uint) (interface{}, error) {
		return svc.ApproveInbound(c.Request().Context(), id, auth.CurrentUser(c))
	}), approvers)

	g.POST("/:id/complete", action("Inbound completed", func(c echo.Context, id uint) (interface{}, error) {
		return svc.CompleteInbound(c.Request().Context(), id, auth.CurrentUser(c))
	}))

	g.POST("/:id/cancel", action("Inbound cancelled", func(c echo.Context, id uint) (interface{}, error) {
		reason, err := cancelReason(c)
		if err != nil {
			return nil, err
		}
		return svc.CancelInbound(c.Request().Context(), id, reason)
	}))
}
