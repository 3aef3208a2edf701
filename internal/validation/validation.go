// Package validation checks operation inputs and aggregates every violation
// of one input into a field/message list, rather than failing on the first.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their json names so violations match the wire contract.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Check validates the struct's `validate` tags and returns all violations.
// An empty result means the input is valid.
func Check(input any) []apperr.FieldViolation {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var violations []apperr.FieldViolation
	for _, fieldErr := range err.(validator.ValidationErrors) {
		violations = append(violations, apperr.FieldViolation{
			Field:   fieldErr.Field(),
			Message: messageFor(fieldErr.Field()),
		})
	}
	return violations
}

func messageFor(field string) string {
	switch field {
	case "email":
		return "The email is invalid."
	case "password":
		return "The password is too short!"
	case "name":
		return "You must put your name."
	case "title":
		return "The title is empty or less than 5 characters."
	case "content":
		return "You must put valid content"
	default:
		return "The " + field + " is invalid."
	}
}
