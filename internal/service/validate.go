package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates a command struct and converts failures into a
// field-level validation error.
func check(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := fields[name]; seen {
			continue
		}
		if fe.Tag() == "required" {
			fields[name] = apperr.FieldIsRequired(name)
		} else {
			fields[name] = apperr.FieldIsInvalid(name)
		}
	}
	return apperr.ValidationFields(fields)
}

// blank reports whether s is empty once surrounding whitespace is removed.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
