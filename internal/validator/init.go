package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// Struct validates s against its `validate` tags with the shared validator.
func Struct(s any) error {
	return validate.Struct(s)
}
