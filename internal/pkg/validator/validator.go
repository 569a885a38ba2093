package validator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trip-planner/internal/pkg/errors"
)

var validate = validator.New()

// Validate runs struct-tag validation on s. Tag violations come back as a
// typed invalid-input error with one detail entry per failing field.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrInvalidInput.WithDetail(err.Error())
	}

	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[strings.ToLower(fe.Field())] = describeFailure(fe)
	}
	return errors.ErrInvalidInput.WithDetails(details)
}

// GetValidator exposes the shared instance for custom rules.
func GetValidator() *validator.Validate {
	return validate
}

func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the %s date format", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
