package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// phoneRgx accepts Swedish mobile numbers in national or E.164 form.
var phoneRgx = regexp.MustCompile(`^(\+46|0)[\s-]?7[\s-]?[02369]([\s-]?\d){7}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("phone_se", validatePhone)

	return validator
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "phone_se":
		return "must be a valid Swedish phone number"
	case "uuid4":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}
