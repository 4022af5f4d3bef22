// Package document serves /api/inbounds and /api/outbounds with their approval workflow.
package document

import (
	"github.com/labstack/echo/v4"

	"warehouse.GO/api"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
)

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// cancelReason binds the optional cancel body.
func cancelReason(c echo.Context) (string, error) {
	if c.Request().ContentLength == 0 {
		return "", nil
	}
	var in cancelRequest
	if err := validate.Bind(c, &in); err != nil {
		return "", err
	}
	return in.Reason, nil
}

// action runs a workflow step on the document named by :id and renders the result.
func action(message string, fn func(c echo.Context, id uint) (interface{}, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		doc, err := fn(c, id)
		if err != nil {
			return err
		}
		return response.OK(c, message, doc)
	}
}
