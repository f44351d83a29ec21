package service

import (
	"errors"
	"fmt"

	"github.com/yourorg/internship-platform/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Sentinel errors returned by the services. Handlers map them to HTTP status codes.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// newValidator builds the validator used for service inputs
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("notificationtype", func(fl validator.FieldLevel) bool {
		return model.NotificationType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// validateStruct validates s and wraps any failure in ErrValidation
func validateStruct(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: field %s failed on %s", ErrValidation, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
