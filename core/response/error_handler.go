package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"warehouse.GO/core/apperror"
)

// ErrorHandler is the central echo.HTTPErrorHandler: it formats every error in the envelope
// and logs server errors.
func ErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		appErr := toAppError(err)
		if appErr.Status >= http.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error(err.Error())
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(appErr.Status)
			return
		}
		if werr := Fail(c, appErr); werr != nil {
			logger.WithError(werr).Error("write error response")
		}
	}
}

func toAppError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		switch he.Code {
		case http.StatusNotFound:
			return apperror.New(he.Code, apperror.CodeNotFound, msg)
		case http.StatusUnauthorized:
			return apperror.New(he.Code, apperror.CodeUnauthorized, msg)
		case http.StatusForbidden:
			return apperror.New(he.Code, apperror.CodeForbidden, msg)
		case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
			return apperror.New(he.Code, apperror.CodeBadRequest, msg)
		}
		if he.Code >= http.StatusInternalServerError {
			return apperror.Internal(err)
		}
		return apperror.New(he.Code, apperror.CodeBadRequest, msg)
	}
	return apperror.Internal(err)
}
