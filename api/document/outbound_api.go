package document

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	outboundRepo "warehouse.GO/model/repository/outbound"
	"warehouse.GO/service/stock"
)

func init() {
	api.RegisterModule(RegisterOutboundRoutes)
}

func RegisterOutboundRoutes(apiGroup *echo.Group, db *gorm.DB) {
	OutboundRoutes(apiGroup, db, stock.NewDefaultService(db))
}

func OutboundRoutes(apiGroup *echo.Group, db *gorm.DB, svc *stock.Service) {
	g := apiGroup.Group("/outbounds")
	approvers := auth.RequireRoles(entity.RoleAdmin, entity.RoleManager)
	repo := outboundRepo.NewOutboundRepository(db)

	g.GET("", func(c echo.Context) error {
		var f outboundRepo.Filter
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
		return svc.Outbound(c.Request().Context(), id)
	}))

	g.POST("", func(c echo.Context) error {
		var in stock.OutboundInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		doc, err := svc.CreateOutbound(c.Request().Context(), auth.CurrentUser(c), in)
		if err != nil {
			return err
		}
		return response.Created(c, "Outbound created", doc)
	})

	g.PUT("/:id", action("Outbound updated", func(c echo.Context, id uint) (interface{}, error) {
		var in stock.OutboundInput
		if err := validate.Bind(c, &in); err != nil {
			return nil, err
		}
		return svc.UpdateOutbound(c.Request().Context(), id, in)
	}))

	g.DELETE("/:id", action("Outbound deleted", func(c echo.Context, id uint) (interface{}, error) {
		return nil, svc.DeleteOutbound(c.Request().Context(), id)
	}))

	g.POST("/:id/submit", action("Outbound submitted", func(c echo.Context, id uint) (interface{}, error) {
		return svc.SubmitOutbound(c.Request().Context(), id)
	}))

	g.POST("/:id/approve", action("Outbound approved", func(c echo.Context, id uint) (interface{}, error) {
		return svc.ApproveOutbound(c.Request().Context(), id, auth.CurrentUser(c))
	}), approvers)

	g.POST("/:id/complete", action("Outbound completed", func(c echo.Context, id uint) (interface{}, error) {
		return svc.CompleteOutbound(c.Request().Context(), id, auth.CurrentUser(c))
	}))

	g.POST("/:id/cancel", action("Outbound cancelled", func(c echo.Context, id uint) (interface{}, error) {
		reason, err := cancelReason(c)
		if err != nil {
			return nil, err
		}
		return svc.CancelOutbound(c.Request().Context(), id, auth.CurrentUser(c), reason)
	}))
}
