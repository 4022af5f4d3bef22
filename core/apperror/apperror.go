package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Error codes returned in the response body "code" field.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateKey       = "DUPLICATE_KEY"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
)

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error with an HTTP status and a machine-readable code.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so callers can compare against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrDuplicateKey      = &Error{Code: CodeDuplicateKey}
	ErrInvalidStatus     = &Error{Code: CodeInvalidStatus}
	ErrInsufficientStock = &Error{Code: CodeInsufficientStock}
	ErrConflict          = &Error{Code: CodeConflict}
	ErrValidation        = &Error{Code: CodeValidation}
	ErrUnauthorized      = &Error{Code: CodeUnauthorized}
	ErrForbidden         = &Error{Code: CodeForbidden}
)

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Fields: fields}
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
}

func TokenRevoked() *Error {
	return New(http.StatusUnauthorized, CodeTokenRevoked, "Token has been revoked")
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(entity string) *Error {
	return New(http.StatusNotFound, CodeNotFound, entity+" not found")
}

func Duplicate(message string) *Error {
	return New(http.StatusConflict, CodeDuplicateKey, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message)
}

func InvalidStatus(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidStatus, message)
}

func InsufficientStock(message string, details interface{}) *Error {
	e := New(http.StatusBadRequest, CodeInsufficientStock, message)
	e.Details = details
	return e
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error", Err: err}
}

// IsDuplicateKey reports whether err is a unique-constraint violation from MySQL or SQLite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsForeignKey reports whether err is a foreign-key violation from MySQL or SQLite.
func IsForeignKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1451") ||
		strings.Contains(msg, "Error 1452") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}

// FromDB maps repository errors: record not found -> 404, unique violation -> 409,
// foreign-key violation -> 409 CONFLICT.
// Anything else is returned unchanged.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(entity)
	}
	if IsDuplicateKey(err) {
		e := Duplicate(entity + " already exists")
		e.Err = err
		return e
	}
	if IsForeignKey(err) {
		e := Conflict(entity + " is referenced by other records")
		e.Err = err
		return e
	}
	return err
}

// As returns err as *Error, wrapping unknown errors as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
