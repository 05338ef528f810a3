package validate

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/rollcall/rollcall-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	_ = v.RegisterValidation("ddmmmyyyy", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("02-Jan-2006", strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	return v
}

// Struct validates a struct using go-playground/validator
func Struct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apperrors.BadRequest(err.Error())
		}

		details := make(map[string]string)
		for _, e := range validationErrors {
			details[e.Field()] = formatValidationError(e)
		}

		return apperrors.Validation(details)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "hhmm":
		return "must be a time in HH:MM format"
	case "ddmmmyyyy":
		return "must be a date in DD-MMM-YYYY format"
	default:
		return "invalid value"
	}
}
