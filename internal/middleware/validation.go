package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"listing-review/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("cents", validateCents); err != nil {
		panic(err)
	}
	return v
}

// validateCents accepts a float that has at most two fractional digits
func validateCents(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanFloat() {
		return false
	}
	value := decimal.NewFromFloat(field.Float())
	return value.Equal(value.Truncate(2))
}

// ErrMalformedBody is returned when the request body is not valid JSON
var ErrMalformedBody = fmt.Errorf("%w: invalid request body", domain.ErrValidation)

// DecodeAndValidate decodes a JSON body into v and runs its validate tags.
// Failures are returned as domain.ValidationErrors or ErrMalformedBody.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return ValidateStruct(v)
}

// ValidateStruct runs the validate tags of v
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := make(domain.ValidationErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, domain.FieldError{
			Field:   e.Field(),
			Message: getErrorMessage(e),
		})
	}
	return out
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "cents":
		return "Value must have at most 2 decimal places"
	case "oneof":
		return "Value must be one of: " + e.Param()
	case "url":
		return "Value must be a URL"
	case "uuid":
		return "Value must be a UUID"
	default:
		return "Invalid value"
	}
}
