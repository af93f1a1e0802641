package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const invalidBody = "Corpo da requisição inválido"

// RegisterJSONTagNames makes validation errors report the JSON field name
// instead of the Go struct field.
func RegisterJSONTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// SanitizeValidationError takes a binding error and returns a user-friendly message
// without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return invalidBody
	}

	var messages []string
	for _, fe := range validationErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s é obrigatório", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s deve ser um email válido", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s deve ter no mínimo %s", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s deve ter no máximo %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s é inválido", field))
		}
	}

	if len(messages) == 0 {
		return invalidBody
	}
	return strings.Join(messages, "; ")
}
