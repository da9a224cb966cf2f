package repository

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs struct tag validation and reports the first failing
// field as ErrInvalidInput.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) && len(validationErr) > 0 {
		first := validationErr[0]
		switch first.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, first.Field())
		case "email":
			return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
		case "e164":
			return fmt.Errorf("%w: %s must be in E.164 format (+79161234567)", ErrInvalidInput, first.Field())
		default:
			return fmt.Errorf("%w: %s failed %s=%s", ErrInvalidInput, first.Field(), first.Tag(), first.Param())
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
