package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/ttacon/libphonenumber"

	"warehouse.GO/core/apperror"
)

// embedded marks an anonymous struct in a namespace so fieldPath can drop it.
const embedded = "~"

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v      *validator.Validate
	region string
}

// New returns a validator that reports JSON field names and knows the "phone" tag.
func New(phoneRegion string) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if fld.Anonymous {
			return embedded
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if phoneRegion == "" {
		phoneRegion = "VN"
	}
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String(), phoneRegion)
	})
	return &Validator{v: v, region: phoneRegion}
}

// IsPhone reports whether number parses as a valid phone number for region.
func IsPhone(number, region string) bool {
	if strings.TrimSpace(number) == "" {
		return true
	}
	num, err := libphonenumber.Parse(number, region)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.BadRequest(err.Error())
	}
	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return apperror.Validation("Validation failed", fields...)
}

// fieldPath drops the root struct name and embedded structs:
// "CreateProductRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := strings.ReplaceAll(fe.Namespace(), embedded+".", "")
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email"
	case "phone":
		return f + " must be a valid phone number"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", f, fe.Param())
	case "alphanum":
		return f + " must contain only letters and digits"
	}
	return fmt.Sprintf("%s failed %s validation", f, fe.Tag())
}

// Bind decodes the request body into dst and validates it.
func Bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return apperror.BadRequest(fmt.Sprint(he.Message))
		}
		return apperror.BadRequest("invalid request body")
	}
	return c.Validate(dst)
}
