package middleware

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"listing-review/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decideBody struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func TestDecodeAndValidate(t *testing.T) {
	var body decideBody
	req := httptest.NewRequest("PUT", "/", strings.NewReader(`{"status":"approved"}`))
	require.NoError(t, DecodeAndValidate(req, &body))
	assert.Equal(t, "approved", body.Status)
}

func TestDecodeAndValidate_FieldErrors(t *testing.T) {
	var body decideBody
	req := httptest.NewRequest("PUT", "/", strings.NewReader(`{"status":"pending"}`))
	err := DecodeAndValidate(req, &body)

	var fieldErrs domain.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, "Status", fieldErrs[0].Field)
	assert.Equal(t, "Value must be one of: approved rejected", fieldErrs[0].Message)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	for _, raw := range []string{`{`, `{"status":"approved","extra":1}`} {
		var body decideBody
		err := DecodeAndValidate(httptest.NewRequest("PUT", "/", strings.NewReader(raw)), &body)
		assert.True(t, errors.Is(err, ErrMalformedBody), raw)
	}
}

type priceBody struct {
	Price float64 `json:"price" validate:"gte=0,lte=9999999999.99,cents"`
}

func TestValidateStruct_Price(t *testing.T) {
	accepted := []float64{0, 19.99, 19.9, 7, 9999999999.99}
	for _, price := range accepted {
		assert.NoError(t, ValidateStruct(&priceBody{Price: price}), price)
	}

	rejected := map[float64]string{
		19.999:      "Value must have at most 2 decimal places",
		0.001:       "Value must have at most 2 decimal places",
		10000000000: "Value must be less than or equal to 9999999999.99",
		-0.5:        "Value must be greater than or equal to 0",
	}
	for price, message := range rejected {
		err := ValidateStruct(&priceBody{Price: price})
		var fieldErrs domain.ValidationErrors
		require.True(t, errors.As(err, &fieldErrs), price)
		assert.Equal(t, message, fieldErrs[0].Message, price)
	}
}
