package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator. It satisfies echo.Validator.
type Validator struct {
	validator *validator.Validate
}

// New creates a new validator that reports JSON field names.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON field names for validation error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: validate}
}

// Validate validates a struct and returns an *Error on failure.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return NewError(errs)
	}
	return err
}

// Error carries one message per invalid field.
type Error struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, len(fields))
	for i, field := range fields {
		messages[i] = e.Errors[field]
	}
	return "validation failed: " + strings.Join(messages, ", ")
}

// NewError creates an Error from validator.ValidationErrors.
func NewError(errs validator.ValidationErrors) *Error {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "email":
			out[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			out[field] = fmt.Sprintf("%s must contain at least %s item(s)", field, err.Param())
		case "eq":
			out[field] = fmt.Sprintf("%s must be %q", field, err.Param())
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return &Error{Errors: out}
}
