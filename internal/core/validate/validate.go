// Package validate checks service inputs against `validate` struct tags and
// converts failures into apperror validation errors.
package validate

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"repairdesk/internal/core/apperror"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Struct validates v and returns a VALIDATION_ERROR listing each failing field,
// or nil when v is valid.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidation(err.Error())
	}

	fields := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}

	return apperror.NewValidation("invalid fields: "+strings.Join(names, ", ")).
		WithDetail("fields", fields)
}
