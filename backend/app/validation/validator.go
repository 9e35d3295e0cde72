// Package validation wraps go-playground/validator and reports failures as
// apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"bookshelf/backend/app/apperr"

	"github.com/go-playground/validator/v10"
)

// MinPublishedYear is the earliest accepted publication year.
const MinPublishedYear = 1000

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New() *Validator {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		name, _, _ = strings.Cut(name, ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// pubyear: 1000 through the current year
	_ = val.v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			y := fl.Field().Int()
			return ValidYear(int(y), val.now())
		}
		return false
	})
	// notblank rejects whitespace-only strings
	_ = val.v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return val
}

// ValidYear reports whether y is an acceptable publication year at now.
func ValidYear(y int, now time.Time) bool {
	return y >= MinPublishedYear && y <= now.Year()
}

// Validate checks s and returns an *apperr.Error listing every bad field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against tag, naming it field in the error.
func (v *Validator) Var(field string, value any, tag string) *apperr.FieldError {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return &apperr.FieldError{Field: field, Message: friendlyMessage(field, errs[0])}
	}
	return &apperr.FieldError{Field: field, Message: field + " is invalid"}
}

func (v *Validator) formatError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return apperr.Internal("validation", err)
	}
	fields := make([]apperr.FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, apperr.FieldError{Field: e.Field(), Message: friendlyMessage(e.Field(), e)})
	}
	return apperr.Validation("Validation failed", fields...)
}

//nolint:gocyclo // one case per tag
func friendlyMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "alphanum":
		return field + " may only contain letters and numbers"
	case "pubyear":
		return fmt.Sprintf("%s must be between %d and the current year", field, MinPublishedYear)
	default:
		return field + " is invalid"
	}
}
