package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"warehouse.GO/core/apperror"
	"warehouse.GO/core/query"
)

// ParamID parses the uint path parameter name.
func ParamID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

// ID parses the ":id" path parameter.
func ID(c echo.Context) (uint, error) {
	return ParamID(c, "id")
}

// Query decodes the query string into a filter struct.
func Query(c echo.Context, dst interface{}) error {
	return query.Decode(c.QueryParams(), dst)
}

// IntQuery reads an integer query parameter, returning 0 when absent or malformed.
func IntQuery(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}
