package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSaleRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0,lte=9999.99"`
	SaleDate  string          `json:"sale_date" validate:"required,datetime=2006-01-02"`
}

func decodeTestSale(t *testing.T, body map[string]interface{}) (testSaleRequest, error) {
	t.Helper()
	reqBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/sales", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var sale testSaleRequest
	return sale, DecodeAndValidate(req, &sale)
}

func validSaleBody() map[string]interface{} {
	return map[string]interface{}{
		"product_id": "7b0c3c1e-2f7a-4d55-9a3c-5a8f3f0b9d11",
		"quantity":   2,
		"unit_price": "89.99",
		"sale_date":  "2026-03-01",
	}
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeProduct bool, includeQuantity bool, includeDate bool) bool {
			body := validSaleBody()
			if !includeProduct {
				delete(body, "product_id")
			}
			if !includeQuantity {
				delete(body, "quantity")
			}
			if !includeDate {
				delete(body, "sale_date")
			}

			_, err := decodeTestSale(t, body)

			if includeProduct && includeQuantity && includeDate {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_UnitPriceRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unit prices outside 0..9999.99 are rejected", prop.ForAll(
		func(cents int64) bool {
			body := validSaleBody()
			body["unit_price"] = decimal.New(cents, -2).String()

			_, err := decodeTestSale(t, body)

			if cents >= 0 && cents <= 999999 {
				return err == nil
			}
			return err != nil
		},
		gen.Int64Range(-50000, 1050000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	body := validSaleBody()
	body["quantity"] = 0
	body["sale_date"] = "01/03/2026"

	_, err := decodeTestSale(t, body)
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	fields := map[string]string{}
	for _, ve := range formatted {
		fields[ve.Field] = ve.Message
	}

	assert.Equal(t, "Value must be greater than or equal to 1", fields["quantity"])
	assert.Equal(t, "Date must use the format YYYY-MM-DD", fields["sale_date"])
}

func TestMalformedBodyIsReportedSeparately(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/sales", bytes.NewBufferString(`{"quantity": "two"`))

	var sale testSaleRequest
	err := DecodeAndValidate(req, &sale)

	var malformed *MalformedBodyError
	require.True(t, errors.As(err, &malformed))
	assert.Empty(t, FormatValidationErrors(err))
}
