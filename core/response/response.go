package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"warehouse.GO/core/apperror"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message,omitempty"`
	Code       string                  `json:"code,omitempty"`
	Data       interface{}             `json:"data,omitempty"`
	Errors     []apperror.FieldError   `json:"errors,omitempty"`
	Details    interface{}             `json:"details,omitempty"`
	Pagination *Pagination             `json:"pagination,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Timestamp: time.Now()})
}

func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data, Timestamp: time.Now()})
}

// Paginated writes a list page; data is always a JSON array.
func Paginated(c echo.Context, message string, data interface{}, p *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: p, Timestamp: time.Now()})
}

// Fail writes an *apperror.Error body.
func Fail(c echo.Context, e *apperror.Error) error {
	return c.JSON(e.Status, Envelope{
		Success:   false,
		Message:   e.Message,
		Code:      e.Code,
		Errors:    e.Fields,
		Details:   e.Details,
		Timestamp: time.Now(),
	})
}
