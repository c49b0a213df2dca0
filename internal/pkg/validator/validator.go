package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate - validate a struct against its tags
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - expose the validator for custom configuration
func GetValidator() *validator.Validate {
	return validate
}
