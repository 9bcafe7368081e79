package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shiftwise/shiftbot/backend/models"
)

var validate = validator.New()

// ValidateStruct runs the struct's validate tags and returns one entry per
// failed field, nil when everything passes.
func ValidateStruct(s interface{}) []models.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.ValidationError{{Field: "request", Message: err.Error()}}
	}

	out := make([]models.ValidationError, 0, len(invalid))
	for _, fe := range invalid {
		out = append(out, models.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
