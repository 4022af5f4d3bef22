// Package report serves /api/reports as JSON, Excel or PDF.
package report

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/response"
	reportService "warehouse.GO/service/report"
)

func init() {
	api.RegisterModule(RegisterReportRoutes)
}

type builder func(ctx context.Context, f reportService.Filter) (*reportService.Report, error)

func RegisterReportRoutes(apiGroup *echo.Group, db *gorm.DB) {
	Routes(apiGroup, reportService.NewService(db))
}

func Routes(apiGroup *echo.Group, svc *reportService.Service) {
	g := apiGroup.Group("/reports")
	g.GET("/inventory", serve(svc.Inventory))
	g.GET("/movements", serve(svc.Movements))
	g.GET("/inbounds", serve(svc.Inbounds))
	g.GET("/outbounds", serve(svc.Outbounds))
}

// serve builds the report and writes it in the requested format.
func serve(build builder) echo.HandlerFunc {
	return func(c echo.Context) error {
		var f reportService.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		if err := f.CheckFormat(); err != nil {
			return err
		}
		r, err := build(c.Request().Context(), f)
		if err != nil {
			return err
		}
		var (
			body        []byte
			contentType string
		)
		switch f.Format {
		case reportService.FormatXLSX:
			body, err = r.XLSX()
			contentType = reportService.ContentTypeXLSX
		case reportService.FormatPDF:
			body, err = r.PDF()
			contentType = reportService.ContentTypePDF
		default:
			return response.OK(c, "", r)
		}
		if err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+r.Filename(f.Format)+`"`)
		return c.Blob(http.StatusOK, contentType, body)
	}
}
